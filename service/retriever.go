package service

import (
	"context"
	"fmt"
	"log"

	"voiceoflaw-backend/models"
	"voiceoflaw-backend/pdftext"
	"voiceoflaw-backend/storage"

	"github.com/google/uuid"
)

const (
	maxContextCases    = 5
	maxContextBooks    = 3
	maxContextArticles = 3

	// Book PDFs can run to hundreds of pages; only the first slice goes
	// into the prompt.
	maxBookTextChars = 2000
)

// ContextItemKind distinguishes the sources of retrieved context
type ContextItemKind string

const (
	ContextCase    ContextItemKind = "case"
	ContextBook    ContextItemKind = "book"
	ContextArticle ContextItemKind = "article"
)

// ContextItem is one retrieved piece of context for the generator
type ContextItem struct {
	Kind    ContextItemKind
	Title   string
	Content string
	Source  string
}

// ContextRetriever gathers query-relevant context from the user's own cases,
// the active book library and published articles
type ContextRetriever struct {
	cases CaseSearcher
	books BookSearcher
	posts PostSearcher
	store storage.Storage
}

// ContextRetrieverOption is a functional option for ContextRetriever
type ContextRetrieverOption func(*ContextRetriever)

// WithRetrieverCases sets the case search source
func WithRetrieverCases(cases CaseSearcher) ContextRetrieverOption {
	return func(r *ContextRetriever) {
		r.cases = cases
	}
}

// WithRetrieverBooks sets the book search source
func WithRetrieverBooks(books BookSearcher) ContextRetrieverOption {
	return func(r *ContextRetriever) {
		r.books = books
	}
}

// WithRetrieverPosts sets the article search source
func WithRetrieverPosts(posts PostSearcher) ContextRetrieverOption {
	return func(r *ContextRetriever) {
		r.posts = posts
	}
}

// WithRetrieverStorage sets the storage used to read book PDFs
func WithRetrieverStorage(store storage.Storage) ContextRetrieverOption {
	return func(r *ContextRetriever) {
		r.store = store
	}
}

// NewContextRetriever creates a new context retriever
func NewContextRetriever(opts ...ContextRetrieverOption) *ContextRetriever {
	r := &ContextRetriever{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search retrieves context for a query. Case results are scoped to the
// requesting user. A failing source is logged and skipped so one bad
// source never empties the whole context.
func (r *ContextRetriever) Search(ctx context.Context, query string, userID uuid.UUID) []ContextItem {
	var items []ContextItem

	if r.cases != nil {
		cases, err := r.cases.SearchOwned(ctx, userID, query, maxContextCases)
		if err != nil {
			log.Printf("Warning: case search failed: %v", err)
		}
		for _, c := range cases {
			items = append(items, caseItem(c))
		}
	}

	if r.books != nil {
		books, err := r.books.SearchActive(ctx, query, maxContextBooks)
		if err != nil {
			log.Printf("Warning: book search failed: %v", err)
		}
		for _, b := range books {
			items = append(items, r.bookItem(ctx, b))
		}
	}

	if r.posts != nil {
		posts, err := r.posts.Search(ctx, query, maxContextArticles)
		if err != nil {
			log.Printf("Warning: article search failed: %v", err)
		}
		for _, p := range posts {
			items = append(items, ContextItem{
				Kind:    ContextArticle,
				Title:   p.Title,
				Content: p.Description + "\n" + p.FullContent,
				Source:  "Article: " + p.Title,
			})
		}
	}

	return items
}

func caseItem(c *models.Case) ContextItem {
	content := fmt.Sprintf("Case No: %s\nType: %s\nStatus: %s\nCourt: %s\nParty: %s vs %s",
		c.CaseNo, c.Type, c.Status, c.Court, c.PartyName, c.Respondent)
	if c.Description != nil && *c.Description != "" {
		content += "\n" + *c.Description
	}
	return ContextItem{
		Kind:    ContextCase,
		Title:   c.Title,
		Content: content,
		Source:  "Case: " + c.Title,
	}
}

// bookItem builds a context item for a book, pulling the opening slice of
// the PDF text. If the PDF cannot be read or parsed, the book still enters
// the context with its description only.
func (r *ContextRetriever) bookItem(ctx context.Context, b *models.Book) ContextItem {
	content := b.Description

	if r.store != nil && b.PDFPath != "" {
		if text, err := r.extractBookText(ctx, b.PDFPath); err != nil {
			log.Printf("Warning: could not extract text from book %q: %v", b.Title, err)
		} else if text != "" {
			content += "\n" + text
		}
	}

	return ContextItem{
		Kind:    ContextBook,
		Title:   b.Title,
		Content: content,
		Source:  fmt.Sprintf("Book: %s (%s)", b.Title, b.Category),
	}
}

func (r *ContextRetriever) extractBookText(ctx context.Context, pdfPath string) (string, error) {
	reader, err := r.store.Download(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	return pdftext.Extract(reader, maxBookTextChars)
}

package service

import (
	"context"
	"errors"
	"testing"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSearchCombinesSourcesWithLabels(t *testing.T) {
	cases := &fakeCaseSearcher{cases: []*models.Case{{
		Title: "Khan vs State", CaseNo: "123/2024", Type: "criminal",
		Status: models.CasePending, Court: "Lahore High Court",
		PartyName: "Khan", Respondent: "State",
		Description: strPtr("theft case"),
	}}}
	books := &fakeBookSearcher{books: []*models.Book{{
		Title: "Pakistan Penal Code", Description: "PPC annotated",
		Category: models.CategoryActsRules,
	}}}
	posts := &fakePostSearcher{posts: []*models.Post{{
		Title: "Bail reform", Description: "summary", FullContent: "full text",
	}}}

	r := NewContextRetriever(
		WithRetrieverCases(cases),
		WithRetrieverBooks(books),
		WithRetrieverPosts(posts),
	)

	items := r.Search(context.Background(), "theft", uuid.New())
	assert.Len(t, items, 3)

	assert.Equal(t, ContextCase, items[0].Kind)
	assert.Equal(t, "Case: Khan vs State", items[0].Source)
	assert.Contains(t, items[0].Content, "123/2024")
	assert.Contains(t, items[0].Content, "theft case")

	assert.Equal(t, ContextBook, items[1].Kind)
	assert.Equal(t, "Book: Pakistan Penal Code (Acts & Rules)", items[1].Source)
	// No storage configured, so only the description enters the context
	assert.Equal(t, "PPC annotated", items[1].Content)

	assert.Equal(t, ContextArticle, items[2].Kind)
	assert.Equal(t, "Article: Bail reform", items[2].Source)
	assert.Contains(t, items[2].Content, "full text")
}

func TestSearchSkipsFailingSources(t *testing.T) {
	cases := &fakeCaseSearcher{err: errors.New("connection reset")}
	posts := &fakePostSearcher{posts: []*models.Post{{Title: "Still here"}}}

	r := NewContextRetriever(
		WithRetrieverCases(cases),
		WithRetrieverPosts(posts),
	)

	items := r.Search(context.Background(), "theft", uuid.New())
	assert.Len(t, items, 1)
	assert.Equal(t, "Article: Still here", items[0].Source)
}

func TestSearchWithNoSources(t *testing.T) {
	r := NewContextRetriever()
	items := r.Search(context.Background(), "theft", uuid.New())
	assert.Empty(t, items)
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const (
	generateMaxAttempts = 2
	generateBackoff     = time.Second

	// Per-item budget inside the prompt; the retriever's content can be
	// much longer.
	maxPromptItemChars = 500

	historyWindow = 6
)

// TextGenerator produces a completion for a prompt. The Gemini client sits
// behind this so tests can substitute a fake.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements TextGenerator on the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed text generator
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// GenerateText sends the prompt to Gemini and returns the text of the reply
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text")
	}
	return sb.String(), nil
}

var systemPrompts = map[Language]string{
	LangUrdu:      `آپ ایک پاکستانی قانونی معاون ہیں۔ صرف قانونی سوالات کا جواب دیں۔ اگر سوال قانون سے متعلق نہیں ہے، تو شائستگی سے انکار کریں۔`,
	LangRomanUrdu: `Aap ek Pakistani legal assistant hain. Sirf legal sawalat ka jawab dein Roman Urdu mein. Agar sawal law se related nahi hai, to shayasta tareeqe se inkaar karein.`,
	LangEnglish:   `You are a Pakistani legal assistant. Only answer law-related questions in English. If the question is not related to law, politely decline.`,
}

var declineMessages = map[Language]string{
	LangUrdu:      `معذرت، میں صرف قانونی معاملات میں مدد کر سکتا ہوں۔ براہ کرم کوئی قانونی سوال پوچھیں۔`,
	LangRomanUrdu: `Maazrat, main sirf legal matters mein madad kar sakta hoon. Koi legal sawal poochain.`,
	LangEnglish:   `I can only provide assistance related to law and legal cases. Please ask a legal question.`,
}

var errorMessages = map[Language]string{
	LangUrdu:      `معذرت، اس وقت جواب دینے میں مسئلہ ہو رہا ہے۔ براہ کرم دوبارہ کوشش کریں۔`,
	LangRomanUrdu: `Maazrat, is waqt jawab dene mein masla ho raha hai. Dobara koshish karein.`,
	LangEnglish:   `Sorry, I'm having trouble processing your request right now. Please try again.`,
}

// GeneratedResponse is the assistant's reply together with the labels of
// the context items it was given
type GeneratedResponse struct {
	Response string
	Sources  []string
}

// ResponseGenerator turns a classified query plus retrieved context into an
// assistant reply
type ResponseGenerator struct {
	generator TextGenerator
	backoff   time.Duration
}

// ResponseGeneratorOption is a functional option for ResponseGenerator
type ResponseGeneratorOption func(*ResponseGenerator)

// WithTextGenerator sets the underlying text generator
func WithTextGenerator(g TextGenerator) ResponseGeneratorOption {
	return func(r *ResponseGenerator) {
		r.generator = g
	}
}

// WithGenerateBackoff overrides the retry backoff, for tests
func WithGenerateBackoff(d time.Duration) ResponseGeneratorOption {
	return func(r *ResponseGenerator) {
		r.backoff = d
	}
}

// NewResponseGenerator creates a new response generator
func NewResponseGenerator(opts ...ResponseGeneratorOption) *ResponseGenerator {
	r := &ResponseGenerator{backoff: generateBackoff}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate produces the assistant's reply. Off-topic queries get a canned
// decline in the detected language without calling the model. Model
// failures degrade to a canned error message, never an error to the caller.
func (r *ResponseGenerator) Generate(ctx context.Context, query string, c Classification, items []ContextItem, history models.MessageList) GeneratedResponse {
	if !c.IsLegal && !c.IsGreeting {
		return GeneratedResponse{Response: declineMessages[c.Language]}
	}

	prompt, sources := r.buildPrompt(query, c, items, history)

	var lastErr error
	for attempt := 1; attempt <= generateMaxAttempts; attempt++ {
		text, err := r.generator.GenerateText(ctx, prompt)
		if err == nil {
			return GeneratedResponse{Response: text, Sources: sources}
		}
		lastErr = err
		log.Printf("Warning: generation attempt %d failed: %v", attempt, err)
		if attempt < generateMaxAttempts {
			select {
			case <-ctx.Done():
				return GeneratedResponse{Response: errorMessages[c.Language]}
			case <-time.After(r.backoff):
			}
		}
	}

	log.Printf("Error: all generation attempts failed: %v", lastErr)
	return GeneratedResponse{Response: errorMessages[c.Language]}
}

func (r *ResponseGenerator) buildPrompt(query string, c Classification, items []ContextItem, history models.MessageList) (string, []string) {
	var sb strings.Builder
	sb.WriteString(systemPrompts[c.Language])

	if len(history) > 0 {
		start := len(history) - historyWindow
		if start < 0 {
			start = 0
		}
		sb.WriteString("\n\nConversation so far:\n")
		for _, msg := range history[start:] {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
	}

	sb.WriteString("\n\nUser Query: ")
	sb.WriteString(query)
	sb.WriteString("\n")

	var sources []string
	if len(items) > 0 {
		sb.WriteString("\n\nRelevant information from database:\n")
		for i, item := range items {
			content := item.Content
			if runes := []rune(content); len(runes) > maxPromptItemChars {
				// Truncate on rune boundaries; context text is often Urdu.
				content = string(runes[:maxPromptItemChars])
			}
			sb.WriteString(fmt.Sprintf("\n[%d] %s\n%s...\n", i+1, item.Title, content))
			sources = append(sources, item.Source)
		}
	}

	if c.IsGreeting && !mentionsLaw(query) {
		sb.WriteString("\n\nRespond with a brief, warm greeting and offer to help with Pakistani legal questions.")
	} else {
		sb.WriteString("\n\nProvide a detailed, professional legal answer based on Pakistani law. If database context is provided, use it primarily. Otherwise, use your general legal knowledge about Pakistan.")
	}

	return sb.String(), sources
}

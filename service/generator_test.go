package service

import (
	"context"
	"strings"
	"testing"

	"voiceoflaw-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDeclinesOffTopicWithoutModelCall(t *testing.T) {
	gen := &fakeTextGenerator{response: "should not be used"}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	tests := []struct {
		name string
		lang Language
		want string
	}{
		{"english", LangEnglish, declineMessages[LangEnglish]},
		{"urdu", LangUrdu, declineMessages[LangUrdu]},
		{"roman urdu", LangRomanUrdu, declineMessages[LangRomanUrdu]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classification{Language: tt.lang, IsLegal: false, IsGreeting: false}
			got := rg.Generate(context.Background(), "best biryani recipe", c, nil, nil)
			assert.Equal(t, tt.want, got.Response)
			assert.Empty(t, got.Sources)
		})
	}

	assert.Zero(t, gen.calls)
}

func TestGenerateSourcesFollowItemOrder(t *testing.T) {
	gen := &fakeTextGenerator{response: "Under Pakistani law..."}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	items := []ContextItem{
		{Kind: ContextCase, Title: "Khan vs State", Content: "case details", Source: "Case: Khan vs State"},
		{Kind: ContextBook, Title: "PPC", Content: "book text", Source: "Book: PPC (Acts & Rules)"},
		{Kind: ContextArticle, Title: "Bail reform", Content: "article", Source: "Article: Bail reform"},
	}

	c := Classification{Language: LangEnglish, IsLegal: true}
	got := rg.Generate(context.Background(), "what is the punishment for theft", c, items, nil)

	assert.Equal(t, "Under Pakistani law...", got.Response)
	assert.Equal(t, []string{
		"Case: Khan vs State",
		"Book: PPC (Acts & Rules)",
		"Article: Bail reform",
	}, got.Sources)

	// Items are numbered in the prompt in the same order
	prompt := gen.prompts[0]
	assert.Less(t, strings.Index(prompt, "[1] Khan vs State"), strings.Index(prompt, "[2] PPC"))
	assert.Less(t, strings.Index(prompt, "[2] PPC"), strings.Index(prompt, "[3] Bail reform"))
}

func TestGenerateRetriesOnce(t *testing.T) {
	gen := &fakeTextGenerator{response: "answer", failures: 1}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	c := Classification{Language: LangEnglish, IsLegal: true}
	got := rg.Generate(context.Background(), "what is bail", c, nil, nil)

	assert.Equal(t, "answer", got.Response)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateFallsBackToErrorMessage(t *testing.T) {
	gen := &fakeTextGenerator{failures: 10}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	c := Classification{Language: LangRomanUrdu, IsLegal: true}
	got := rg.Generate(context.Background(), "qanoon kya hai", c, nil, nil)

	assert.Equal(t, errorMessages[LangRomanUrdu], got.Response)
	assert.Empty(t, got.Sources)
	assert.Equal(t, generateMaxAttempts, gen.calls)
}

func TestGeneratePromptIncludesRecentHistoryOnly(t *testing.T) {
	gen := &fakeTextGenerator{response: "answer"}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	var history models.MessageList
	for _, content := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"} {
		history = append(history, models.Message{Role: models.RoleMessageUser, Content: content})
	}

	c := Classification{Language: LangEnglish, IsLegal: true}
	rg.Generate(context.Background(), "what is bail", c, nil, history)

	prompt := gen.prompts[0]
	assert.NotContains(t, prompt, "m1")
	assert.NotContains(t, prompt, "m2")
	assert.Contains(t, prompt, "m3")
	assert.Contains(t, prompt, "m8")
}

func TestGeneratePromptTruncatesLongItems(t *testing.T) {
	gen := &fakeTextGenerator{response: "answer"}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	long := strings.Repeat("x", 1200)
	items := []ContextItem{{Title: "Long book", Content: long, Source: "Book: Long book (Books)"}}

	c := Classification{Language: LangEnglish, IsLegal: true}
	rg.Generate(context.Background(), "what is bail", c, items, nil)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, strings.Repeat("x", maxPromptItemChars))
	assert.NotContains(t, prompt, strings.Repeat("x", maxPromptItemChars+1))
}

func TestGenerateGreetingStyle(t *testing.T) {
	gen := &fakeTextGenerator{response: "Hello! How can I help?"}
	rg := NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))

	c := Classify("salam")
	got := rg.Generate(context.Background(), "salam", c, nil, nil)

	assert.Equal(t, "Hello! How can I help?", got.Response)
	assert.Contains(t, gen.prompts[0], "warm greeting")
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"urdu script", "قانون کیا ہے", LangUrdu},
		{"single urdu char wins", "what is قانون", LangUrdu},
		{"roman urdu two keywords", "qanoon kya hai", LangRomanUrdu},
		{"roman urdu question", "talaq ka tariqa kya hai", LangRomanUrdu},
		{"one keyword is not enough", "what is the main law", LangEnglish},
		{"repeated keyword counts once", "kya kya kya", LangEnglish},
		{"plain english", "what is the punishment for theft", LangEnglish},
		{"empty", "", LangEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestIsLegalQuery(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"english keyword", "how do I file a petition", true},
		{"roman urdu keyword", "mujhe wakeel chahiye", true},
		{"question pattern", "can I sue my landlord", true},
		{"greeting passes", "hello", true},
		{"salam greeting passes", "assalam o alaikum", true},
		{"off topic", "best biryani recipe in karachi", false},
		{"off topic weather", "will it rain tomorrow", false},
		{"keyword as substring does not match", "lawnmower repair", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegalQuery(tt.text))
		})
	}
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("hi there"))
	assert.True(t, IsGreeting("salam"))
	// Long messages are not greetings even if they start with one
	long := "hello, I want to know everything about property law in Pakistan and how courts handle it"
	assert.False(t, IsGreeting(long))
}

func TestClassify(t *testing.T) {
	c := Classify("qanoon kya hai")
	assert.Equal(t, LangRomanUrdu, c.Language)
	assert.True(t, c.IsLegal)
	assert.False(t, c.IsGreeting)

	c = Classify("hello")
	assert.True(t, c.IsGreeting)
	assert.True(t, c.IsLegal)
}

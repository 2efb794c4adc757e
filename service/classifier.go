package service

import (
	"regexp"
	"strings"
)

// Language is the detected language of a chat message
type Language string

const (
	LangUrdu      Language = "urdu"
	LangRomanUrdu Language = "roman_urdu"
	LangEnglish   Language = "english"
)

// romanUrduKeywords are common roman-Urdu function words. Two distinct hits
// are enough to call the message roman Urdu.
var romanUrduKeywords = []string{
	"kya", "hai", "aur", "ko", "ka", "ki", "main", "mein", "hoon",
	"kaise", "kyun", "kab", "kahan",
}

const romanUrduThreshold = 2

// legalKeywords flag a message as law-related. Includes the roman-Urdu
// legal vocabulary alongside the English terms.
var legalKeywords = []string{
	"law", "legal", "court", "judge", "case", "attorney", "lawyer",
	"advocate", "constitution", "act", "section", "article", "petition",
	"appeal", "defendant", "plaintiff", "prosecution", "defense", "bail",
	"verdict", "judgment", "statute", "regulation", "ordinance", "contract",
	"agreement", "property", "criminal", "civil", "family", "divorce",
	"custody", "inheritance", "murder", "theft", "fraud", "corruption",
	"rights", "duty", "obligation", "liability", "damages",
	"qanoon", "adalat", "wakeel", "muqadma", "fauj-dari", "diwani",
	"shadi", "talaq", "tarka", "huqooq", "farz", "zimmedari",
}

// greetings pass the relevance check so the assistant can respond politely
var greetings = []string{
	"hello", "hi", "hey", "salam", "assalam", "aoa",
	"good morning", "good afternoon", "good evening", "how are you",
	"kya hal hai",
}

const greetingMaxLength = 50

// legalQuestionPatterns catch law-shaped questions that use none of the
// keywords directly
var legalQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what\s+.*\b(law|legal|court)\b`),
	regexp.MustCompile(`(?i)how\s+.*\b(law|legal|court|file|sue)\b`),
	regexp.MustCompile(`(?i)can\s+i\s+(sue|appeal|claim|file)`),
	regexp.MustCompile(`(?i)my\s+(case|rights|property|lawyer)`),
	regexp.MustCompile(`(?i)is\s+it\s+(legal|illegal)`),
}

// DetectLanguage classifies a message as Urdu script, roman Urdu or English
func DetectLanguage(text string) Language {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return LangUrdu
		}
	}

	words := strings.Fields(strings.ToLower(text))
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'")
		for _, kw := range romanUrduKeywords {
			if w == kw {
				seen[kw] = true
			}
		}
	}
	if len(seen) >= romanUrduThreshold {
		return LangRomanUrdu
	}
	return LangEnglish
}

// IsGreeting reports whether a short message is a plain greeting
func IsGreeting(text string) bool {
	if len(text) >= greetingMaxLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, g := range greetings {
		if strings.Contains(lower, g) {
			return true
		}
	}
	return false
}

// IsLegalQuery reports whether a message is about law. Greetings count as
// acceptable so the assistant can answer them instead of declining.
func IsLegalQuery(text string) bool {
	return IsGreeting(text) || mentionsLaw(text)
}

// mentionsLaw checks the legal keyword list and question patterns
func mentionsLaw(text string) bool {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:\"'")] = true
	}

	for _, kw := range legalKeywords {
		if strings.Contains(kw, " ") || strings.Contains(kw, "-") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if wordSet[kw] {
			return true
		}
	}

	for _, p := range legalQuestionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Classification is the combined outcome of the message classifiers
type Classification struct {
	Language   Language
	IsLegal    bool
	IsGreeting bool
}

// Classify runs language detection and relevance checks on a message
func Classify(text string) Classification {
	return Classification{
		Language:   DetectLanguage(text),
		IsLegal:    IsLegalQuery(text),
		IsGreeting: IsGreeting(text),
	}
}

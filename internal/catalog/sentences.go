package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

// sentencePattern matches a run of text up to and including its terminators.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*|[.!?]+`)

// SplitSentences splits text after '.', '!' and '?', keeping the terminator
// with its sentence. Fragments that are blank or only punctuation are dropped.
//
//	SplitSentences("Great app. Love it! Needs work?") == ["Great app.", "Love it!", "Needs work?"]
func SplitSentences(text string) []string {
	sentences := []string{}
	for _, fragment := range sentencePattern.FindAllString(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if hasContent(fragment) {
			sentences = append(sentences, fragment)
		}
	}
	return sentences
}

func hasContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

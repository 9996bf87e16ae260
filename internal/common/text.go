package common

import (
	"strings"
	"unicode"
)

// Tokenize splits mixed Chinese/English text into tokens: each Han character
// counts as one token, runs of Latin letters and digits count as one word.
// Latin tokens are lowercased; Han characters pass through untouched.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.ToLower(word.String()))
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// MatchesKeyword reports whether keyword occurs in the text. ASCII keywords
// match whole words only (so "and" does not fire inside "brand"); CJK and
// multi-word keywords match as substrings of the lowercased text.
func MatchesKeyword(lower string, words map[string]bool, keyword string) bool {
	if isASCIIWord(keyword) && !strings.Contains(keyword, " ") {
		return words[keyword]
	}
	return strings.Contains(lower, keyword)
}

// WordSet builds a membership set over tokenized words for fast keyword tests.
func WordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		set[tok] = true
	}
	return set
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

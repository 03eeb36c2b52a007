package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/coregex"
	"golang.org/x/text/unicode/norm"
)

// wordRegex matches words (with inner apostrophes or hyphens), numbers (with
// inner separators) and any other single non-space character.
var wordRegex = coregex.MustCompile(`\p{L}[\p{L}\p{M}\p{N}]*(?:['’\-][\p{L}\p{M}\p{N}]+)*|\p{N}+(?:[.,:]\p{N}+)*|\S`)

// Token is a surface token with its byte offsets in the tokenized text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into word, number and punctuation tokens. Offsets
// always satisfy text[t.Start:t.End] == t.Text.
func Tokenize(text string) []Token {
	locs := wordRegex.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs)) // Initialize as empty slice, not nil
	for _, loc := range locs {
		tokens = append(tokens, Token{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return tokens
}

// Normalize returns the lookup key of a word: NFC-composed and lowercased.
func Normalize(word string) string {
	return strings.ToLower(norm.NFC.String(word))
}

// IsPunct reports whether every rune of s is punctuation or a symbol.
func IsPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// IsNumber reports whether s starts with a digit.
func IsNumber(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

// IsCapitalized reports whether s starts with an upper-case letter.
func IsCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

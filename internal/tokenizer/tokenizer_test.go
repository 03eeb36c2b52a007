package tokenizer

import (
	"reflect"
	"testing"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple sentence", "Turn off the lights", []string{"Turn", "off", "the", "lights"}},
		{"trailing punctuation", "In New York.", []string{"In", "New", "York", "."}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"multiple spaces between words", "San  Francisco", []string{"San", "Francisco"}},
		{"umlauts", "Öffne die Tür!", []string{"Öffne", "die", "Tür", "!"}},
		{"apostrophe inside word", "don't stop", []string{"don't", "stop"}},
		{"hyphenated word", "state-of-the-art design", []string{"state-of-the-art", "design"}},
		{"decimal number", "pay 3.50 now", []string{"pay", "3.50", "now"}},
		{"comma separated", "eins, zwei", []string{"eins", ",", "zwei"}},
		{"only symbols", "!?", []string{"!", "?"}},
		{"quoted word", `"Hund"`, []string{`"`, "Hund", `"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Tokenize(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize_Offsets(t *testing.T) {
	inputs := []string{"Öffne die Tür!", "  In New York frisst ein Hund.", "a, b; c"}
	for _, input := range inputs {
		for _, tok := range Tokenize(input) {
			if input[tok.Start:tok.End] != tok.Text {
				t.Errorf("token %q has offsets [%d,%d) that slice %q out of %q",
					tok.Text, tok.Start, tok.End, input[tok.Start:tok.End], input)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	decomposed := "Tu\u0308r" // u + combining diaeresis
	if got := Normalize(decomposed); got != "tür" {
		t.Errorf("Normalize(%q) = %q, want %q", decomposed, got, "tür")
	}
	if got := Normalize("HUND"); got != "hund" {
		t.Errorf("Normalize(HUND) = %q, want hund", got)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		input       string
		punct       bool
		number      bool
		capitalized bool
	}{
		{".", true, false, false},
		{"...", true, false, false},
		{"€", true, false, false},
		{"42", false, true, false},
		{"Hund", false, false, true},
		{"hund", false, false, false},
		{"", false, false, false},
	}

	for _, tt := range tests {
		if got := IsPunct(tt.input); got != tt.punct {
			t.Errorf("IsPunct(%q) = %v, want %v", tt.input, got, tt.punct)
		}
		if got := IsNumber(tt.input); got != tt.number {
			t.Errorf("IsNumber(%q) = %v, want %v", tt.input, got, tt.number)
		}
		if got := IsCapitalized(tt.input); got != tt.capitalized {
			t.Errorf("IsCapitalized(%q) = %v, want %v", tt.input, got, tt.capitalized)
		}
	}
}

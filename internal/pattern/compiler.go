// Package pattern compiles NatEx patterns into regular expressions that run
// against a sentence representation.
//
// A pattern is a sequence of token selectors such as <@DET> <hund\w*@NOUN>.
// Inside a selector, @ constrains the part-of-speech tag, # the dependency
// label, : either of them, and ! the morphological flag. Text outside the
// markers constrains the token literal and is kept as regex syntax.
package pattern

import (
	"strings"

	"github.com/coregx/coregex"

	"github.com/gcbaptista/go-natex/internal/errors"
)

// Flag modifies how a compiled pattern matches.
type Flag uint8

const (
	IgnoreCase Flag = 1 << iota
	Multiline
	DotAll
)

// Short names of the flags.
const (
	I = IgnoreCase
	M = Multiline
	S = DotAll
)

// ParseFlags reads a flag string such as "i" or "IMS".
func ParseFlags(s string) (Flag, error) {
	var f Flag
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'I':
			f |= IgnoreCase
		case 'M':
			f |= Multiline
		case 'S':
			f |= DotAll
		default:
			return 0, errors.NewValidationError("flags", "unknown flag "+string(r))
		}
	}
	return f, nil
}

func (f Flag) String() string {
	var b strings.Builder
	if f&IgnoreCase != 0 {
		b.WriteByte('i')
	}
	if f&Multiline != 0 {
		b.WriteByte('m')
	}
	if f&DotAll != 0 {
		b.WriteByte('s')
	}
	return b.String()
}

func (f Flag) prefix() string {
	if s := f.String(); s != "" {
		return "(?" + s + ")"
	}
	return ""
}

// Compiled is an immutable compiled pattern, safe for concurrent use.
type Compiled struct {
	// Source is the NatEx pattern as written.
	Source string
	// Regex is the regular expression the pattern was translated to, without flags.
	Regex string
	Flags Flag

	search   *coregex.Regex
	anchored *coregex.Regex
}

// Compile translates pattern and compiles the resulting regular expression.
func Compile(pattern string, flags Flag) (*Compiled, error) {
	regex, err := Translate(pattern)
	if err != nil {
		return nil, err
	}

	search, err := coregex.Compile(flags.prefix() + regex)
	if err != nil {
		return nil, errors.NewCompilationError(pattern, -1, "invalid regular expression "+regex, err)
	}
	anchored, err := coregex.Compile(flags.prefix() + `\A` + regex)
	if err != nil {
		return nil, errors.NewCompilationError(pattern, -1, "invalid regular expression "+regex, err)
	}

	return &Compiled{
		Source:   pattern,
		Regex:    regex,
		Flags:    flags,
		search:   search,
		anchored: anchored,
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, flags Flag) *Compiled {
	c, err := Compile(pattern, flags)
	if err != nil {
		panic(err)
	}
	return c
}

// Searcher returns the regex matching anywhere in a representation.
func (c *Compiled) Searcher() *coregex.Regex {
	return c.search
}

// Anchored returns the regex matching only at the start of a representation.
func (c *Compiled) Anchored() *coregex.Regex {
	return c.anchored
}

func (c *Compiled) String() string {
	return c.Regex
}

// Translate turns a NatEx pattern into a regular expression string. It is a
// pure function of its input.
func Translate(pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", errors.NewCompilationError(pattern, -1, "pattern is empty")
	}
	if err := checkBalance(pattern); err != nil {
		return "", err
	}

	var out strings.Builder
	lastWasToken := false
	for _, seg := range split(protect(pattern)) {
		if seg.kind == spaceSegment {
			out.WriteString(seg.text)
			lastWasToken = false
			continue
		}

		d, err := extract(pattern, seg.text)
		if err != nil {
			return "", err
		}
		if lastWasToken {
			out.WriteString(adjacentSeparator)
		}
		out.WriteString(d.Render())
		lastWasToken = true
	}

	return "(" + nonCapturing(restore(out.String())) + ")", nil
}

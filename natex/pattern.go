package natex

import (
	"github.com/gcbaptista/go-natex/internal/matcher"
	"github.com/gcbaptista/go-natex/internal/pattern"
	"github.com/gcbaptista/go-natex/model"
)

// Pattern is a compiled pattern. It holds no per-sentence state and can be
// applied to any number of sentences concurrently.
type Pattern struct {
	compiled *pattern.Compiled
}

// Compile compiles a pattern once for repeated use.
func Compile(source string, flags ...Flag) (*Pattern, error) {
	var f Flag
	for _, flag := range flags {
		f |= flag
	}
	c, err := pattern.Compile(source, f)
	if err != nil {
		return nil, err
	}
	return &Pattern{compiled: c}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, flags ...Flag) *Pattern {
	p, err := Compile(source, flags...)
	if err != nil {
		panic(err)
	}
	return p
}

// Translate returns the regular expression a pattern compiles to.
func Translate(source string) (string, error) {
	return pattern.Translate(source)
}

// Source returns the pattern as written.
func (p *Pattern) Source() string { return p.compiled.Source }

// Flags returns the flags the pattern was compiled with.
func (p *Pattern) Flags() Flag { return p.compiled.Flags }

// String returns the regular expression run against representations.
func (p *Pattern) String() string { return p.compiled.Regex }

func (p *Pattern) Match(s *Sentence) *model.MatchResult {
	return matcher.Match(p.compiled, s.rep)
}

func (p *Pattern) Search(s *Sentence) *model.MatchResult {
	return matcher.Search(p.compiled, s.rep)
}

// SearchAll returns every non-overlapping match in original coordinates.
func (p *Pattern) SearchAll(s *Sentence) []*model.MatchResult {
	return matcher.SearchAll(p.compiled, s.rep)
}

func (p *Pattern) FindAll(s *Sentence) []string {
	return matcher.FindAll(p.compiled, s.rep)
}

func (p *Pattern) Sub(s *Sentence, replacement string) string {
	return matcher.Substitute(p.compiled, s.rep, replacement)
}

// Split cuts s at matches. n < 0 returns all pieces.
func (p *Pattern) Split(s *Sentence, n int) []string {
	return matcher.Split(p.compiled, s.rep, n)
}

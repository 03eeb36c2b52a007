// Package matcher runs compiled patterns against a sentence representation
// and translates the results back to the original sentence.
package matcher

import (
	"strings"

	"github.com/coregx/coregex"

	"github.com/gcbaptista/go-natex/internal/pattern"
	"github.com/gcbaptista/go-natex/internal/representation"
	"github.com/gcbaptista/go-natex/model"
)

// markup matches the parts of a serialized token that are not its literal:
// the opening marker, the POS run and the dependency run with the closing marker.
var markup = coregex.MustCompile(`<|@[^#]+|#[^>]+>`)

// StripMarkup turns representation text back into plain text.
func StripMarkup(s string) string {
	s = markup.ReplaceAllString(s, "")
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// Match reports the match of c at the very start of rep, or nil.
func Match(c *pattern.Compiled, rep *representation.Representation) *model.MatchResult {
	return resolve(c, rep, c.Anchored().FindStringIndex(rep.Text))
}

// Search reports the leftmost match of c anywhere in rep, or nil.
func Search(c *pattern.Compiled, rep *representation.Representation) *model.MatchResult {
	return resolve(c, rep, c.Searcher().FindStringIndex(rep.Text))
}

// SearchAll reports every non-overlapping match of c in original coordinates.
func SearchAll(c *pattern.Compiled, rep *representation.Representation) []*model.MatchResult {
	var results []*model.MatchResult
	for _, loc := range c.Searcher().FindAllStringIndex(rep.Text, -1) {
		if r := resolve(c, rep, loc); r != nil {
			results = append(results, r)
		}
	}
	return results
}

func resolve(c *pattern.Compiled, rep *representation.Representation, loc []int) *model.MatchResult {
	if loc == nil {
		return nil
	}
	span, ok := rep.Spans.Resolve(loc[0], loc[1])
	if !ok {
		return nil
	}
	return model.NewMatchResult(rep.Original, span, c.Regex)
}

// FindAll returns the text of every non-overlapping match. The text is the
// representation hit with its markup stripped, not a slice of the original.
func FindAll(c *pattern.Compiled, rep *representation.Representation) []string {
	hits := c.Searcher().FindAllString(rep.Text, -1)
	results := make([]string, len(hits))
	for i, hit := range hits {
		results[i] = StripMarkup(hit)
	}
	return results
}

// Substitute replaces every match with replacement and returns the plain
// text of the result. Replacement may refer to groups as $1 or ${1}.
func Substitute(c *pattern.Compiled, rep *representation.Representation, replacement string) string {
	return StripMarkup(c.Searcher().ReplaceAllString(rep.Text, replacement))
}

// Split cuts rep at every match and returns the plain text of the pieces.
// n follows the convention of regexp.Regexp.Split.
func Split(c *pattern.Compiled, rep *representation.Representation, n int) []string {
	pieces := c.Searcher().Split(rep.Text, n)
	for i, p := range pieces {
		pieces[i] = StripMarkup(p)
	}
	return pieces
}

// Package typoutil finds the closest entry of a tag vocabulary for a
// misspelled tag value.
package typoutil

import "sort"

// DamerauLevenshteinDistance counts the insertions, deletions, substitutions
// and adjacent transpositions needed to turn a into b. It works on runes.
func DamerauLevenshteinDistance(a, b string) int {
	return DamerauLevenshteinDistanceWithLimit(a, b, -1)
}

// DamerauLevenshteinDistanceWithLimit is DamerauLevenshteinDistance but stops
// as soon as the distance is known to exceed limit, returning limit+1.
// A negative limit disables the cut-off.
func DamerauLevenshteinDistanceWithLimit(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	if limit >= 0 && abs(len(ra)-len(rb)) > limit {
		return limit + 1
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rows are enough: transpositions look two rows back.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			cur[j] = d
			rowMin = min(rowMin, d)
		}
		if limit >= 0 && rowMin > limit {
			return limit + 1
		}
		prev2, prev, cur = prev, cur, prev2
	}

	d := prev[len(rb)]
	if limit >= 0 && d > limit {
		return limit + 1
	}
	return d
}

// Suggestion is a vocabulary entry close to a misspelled value.
type Suggestion struct {
	Value    string
	Distance int
}

// Suggest returns the vocabulary entries within maxDistance of term, closest
// first and alphabetically among equals. Exact matches are left out.
func Suggest(term string, vocabulary []string, maxDistance int) []Suggestion {
	if term == "" || maxDistance <= 0 {
		return nil
	}
	var out []Suggestion
	for _, v := range vocabulary {
		if v == term {
			continue
		}
		if d := DamerauLevenshteinDistanceWithLimit(term, v, maxDistance); d <= maxDistance {
			out = append(out, Suggestion{Value: v, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Closest returns the best suggestion for term, if any.
func Closest(term string, vocabulary []string, maxDistance int) (string, bool) {
	s := Suggest(term, vocabulary, maxDistance)
	if len(s) == 0 {
		return "", false
	}
	return s[0].Value, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

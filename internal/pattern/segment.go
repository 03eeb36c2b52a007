package pattern

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gcbaptista/go-natex/internal/errors"
)

// Private-use runes standing in for \< and \> while the pattern is split.
const (
	escapedOpen  = "\uE000"
	escapedClose = "\uE001"
)

const markers = "@#:!"

type segmentKind int

const (
	tokenSegment segmentKind = iota
	spaceSegment
)

type segment struct {
	kind segmentKind
	text string
}

// checkBalance rejects token markers that are nested, never closed or closed
// without being opened. Escaped markers are ignored.
func checkBalance(pattern string) error {
	open := -1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '<':
			if open >= 0 {
				return errors.NewCompilationError(pattern, i, "token marker opened inside another token")
			}
			open = i
		case '>':
			if open < 0 {
				return errors.NewCompilationError(pattern, i, "closing token marker without opening marker")
			}
			open = -1
		}
	}
	if open >= 0 {
		return errors.NewCompilationError(pattern, open, "unclosed token marker")
	}
	return nil
}

// protect swaps \< and \> for placeholders. Other escapes are kept as they are.
func protect(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		switch pattern[i+1] {
		case '<':
			b.WriteString(escapedOpen)
		case '>':
			b.WriteString(escapedClose)
		default:
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
		}
		i++
	}
	return b.String()
}

func restore(s string) string {
	s = strings.ReplaceAll(s, escapedOpen, "<")
	return strings.ReplaceAll(s, escapedClose, ">")
}

// split cuts the pattern after every '>' and before every '<'. Leading and
// trailing whitespace of a token segment becomes its own space segment.
func split(pattern string) []segment {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '<':
			flush()
			cur.WriteByte('<')
		case '>':
			cur.WriteByte('>')
			flush()
		default:
			cur.WriteByte(pattern[i])
		}
	}
	flush()

	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		core := strings.TrimSpace(part)
		if core == "" {
			segments = append(segments, segment{spaceSegment, part})
			continue
		}
		lead := part[:strings.Index(part, core)]
		trail := part[len(lead)+len(core):]
		if lead != "" {
			segments = append(segments, segment{spaceSegment, lead})
		}
		segments = append(segments, segment{tokenSegment, core})
		if trail != "" {
			segments = append(segments, segment{spaceSegment, trail})
		}
	}
	return segments
}

// extract reads the tag runs of a token segment into a descriptor. A run
// starts at an unescaped marker and stops before the next marker or '>'.
func extract(pattern, text string) (TagDescriptor, error) {
	var d TagDescriptor
	if strings.HasPrefix(text, "<") {
		d.Opened = true
		text = text[1:]
	}
	if strings.HasSuffix(text, ">") && !strings.HasSuffix(text, `\>`) {
		d.Closed = true
		text = text[:len(text)-1]
	}

	var literal strings.Builder
	seen := make(map[byte]bool, len(markers))
	for i := 0; i < len(text); {
		c := text[i]
		if !strings.ContainsRune(markers, rune(c)) || escapedAt(text, i) {
			literal.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		for j < len(text) && !strings.ContainsRune(markers+">", rune(text[j])) {
			j++
		}
		value := upperValue(strings.TrimSpace(text[i+1 : j]))
		i = j

		if c == '!' {
			if value != "" {
				return d, errors.NewCompilationError(pattern, -1, "flag marker ! takes no value, got "+value)
			}
			d.Flag = true
			continue
		}
		if value == "" {
			continue
		}
		if seen[c] {
			return d, errors.NewCompilationError(pattern, -1,
				"token constrains "+string(c)+" more than once, use "+string(c)+"(A|B) to allow alternatives")
		}
		seen[c] = true
		switch c {
		case '@':
			d.POS = value
		case '#':
			d.Dep = value
		case ':':
			d.Any = value
		}
	}
	d.Literal = literal.String()
	return d, nil
}

// escapedAt reports whether text[i] follows an odd run of backslashes.
func escapedAt(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// upperValue upper-cases tag values without touching escape sequences, so a
// value like N\w+ keeps its word class.
func upperValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			end := i + 2
			if (s[i+1] == 'p' || s[i+1] == 'P') && end < len(s) && s[end] == '{' {
				if close := strings.IndexByte(s[end:], '}'); close >= 0 {
					end += close + 1
				}
			}
			b.WriteString(s[i:end])
			i = end
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(unicode.ToUpper(r))
		i += size
	}
	return b.String()
}

// nonCapturing rewrites every plain '(' outside character classes into '(?:'.
func nonCapturing(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inClass := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			b.WriteByte(c)
			// a ']' right after '[' or '[^' is a literal member
			if i+1 < len(s) && s[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(s) && s[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
			continue
		case c == '(' && (i+1 >= len(s) || s[i+1] != '?'):
			b.WriteString("(?:")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

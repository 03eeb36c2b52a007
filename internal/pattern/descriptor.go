package pattern

import "strings"

// Regex building blocks for a single token of the representation.
const (
	anyToken      = `<[^>]+>`
	anyButClose   = `[^>]*`
	tolerantOpen  = `<(?:[^<]|\\<)*`
	tolerantClose = `(?:[^>]|\\>)*>`
	exactOpen     = `<`
	exactClose    = `>`
	groupOpen     = `<[^<]*`

	// adjacentSeparator sits between two pattern tokens written without
	// whitespace. Tokens such as "Hand" and "." have an empty separator.
	adjacentSeparator = `[^<>]*`
)

// fieldOrder is the order in which fields appear inside a serialized token.
var fieldOrder = [...]string{"", "@", "#", "!"}

// TagDescriptor is what a single token selector of a pattern asks for.
// Empty strings mean "not constrained".
type TagDescriptor struct {
	Literal string
	POS     string
	Dep     string
	Any     string
	Flag    bool

	// Opened and Closed record whether the selector was written with its
	// own '<' and '>' markers.
	Opened bool
	Closed bool
}

// IsEmpty reports whether the descriptor constrains nothing at all.
func (d TagDescriptor) IsEmpty() bool {
	return !d.hasFields() && d.Any == ""
}

func (d TagDescriptor) hasFields() bool {
	return strings.TrimSpace(d.Literal) != "" || d.POS != "" || d.Dep != "" || d.Flag
}

func (d TagDescriptor) value(field string) (string, bool) {
	switch field {
	case "":
		return d.Literal, d.Literal != ""
	case "@":
		return d.POS, d.POS != ""
	case "#":
		return d.Dep, d.Dep != ""
	case "!":
		return "", d.Flag
	}
	return "", false
}

// Render turns the descriptor into a regex fragment matching exactly one
// serialized token.
func (d TagDescriptor) Render() string {
	if d.IsEmpty() {
		return anyToken
	}

	var fields strings.Builder
	previous := ""
	for i, field := range fieldOrder {
		value, present := d.value(field)
		switch {
		case present:
			fields.WriteString(field + value)
		case field == "!":
		case fieldOrder[i+1] != "!" || d.Flag:
			// unconstrained: run up to the next marker without crossing it
			fields.WriteString(field + "[^<" + previous + fieldOrder[i+1] + "]*")
		}
		previous += field
	}
	fields.WriteString(anyButClose)
	body := fields.String()

	if d.Any != "" {
		selector := `[@#]?` + d.Any + `(?:[ #!][^>]*)?`
		if d.hasFields() {
			body = "(?:" + selector + "|" + body + ")"
		} else {
			body = "(?:" + selector + ")"
		}
	}

	if d.Closed {
		body += exactClose
	} else {
		body += tolerantClose
	}

	switch {
	case !d.Opened:
		return tolerantOpen + body
	case strings.HasPrefix(body, "("):
		// a leading group may start anywhere inside the token
		return groupOpen + body
	default:
		return exactOpen + body
	}
}

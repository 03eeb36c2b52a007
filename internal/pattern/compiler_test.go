package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natexerrors "github.com/gcbaptista/go-natex/internal/errors"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"wildcard", `<>`, `(<[^>]+>)`},
		{"pos only", `<@NOUN>`, `(<[^<@]*@NOUN[^>]*>)`},
		{"literal and pos", `<lights@NOUN>`, `(<lights@NOUN[^>]*>)`},
		{"dependency before pos is reordered", `<#SUBJ@NOUN>`, `(<[^<@]*@NOUN#SUBJ[^>]*>)`},
		{"any selector", `<:OBJ>`, `(<[^<]*(?:[@#]?OBJ(?:[ #!][^>]*)?)>)`},
		{"flag only", `<!>`, `(<[^<@]*@[^<#]*#[^<@!]*![^>]*>)`},
		{"dependency only", `<#nsubj>`, `(<[^<@]*@[^<#]*#NSUBJ[^>]*>)`},
		{
			"bare selector is tolerant on both sides",
			`@(NOUN|PROPN)`,
			`(<(?:[^<]|\\<)*[^<@]*@(?:NOUN|PROPN)[^>]*(?:[^>]|\\>)*>)`,
		},
		{
			"bare and bracketed selectors",
			`@ADP <@PROPN>`,
			`(<(?:[^<]|\\<)*[^<@]*@ADP[^>]*(?:[^>]|\\>)*> <[^<@]*@PROPN[^>]*>)`,
		},
		{
			"adjacent selectors allow any separator, even an empty one",
			`<@ADP><@PROPN>`,
			`(<[^<@]*@ADP[^>]*>[^<>]*<[^<@]*@PROPN[^>]*>)`,
		},
		{
			"alternation across fields",
			`<(@NOUN|#AMOD)>`,
			`(<[^<]*(?:@NOUN|#AMOD)[^>]*>)`,
		},
		{
			"literal regex with lower-case tags",
			`<@det> <hund\w*@noun>`,
			`(<[^<@]*@DET[^>]*> <hund\w*@NOUN[^>]*>)`,
		},
		{
			"escaped markers become literal brackets",
			`\<test\>`,
			`(<(?:[^<]|\\<)*<test>@[^<#]*[^>]*(?:[^>]|\\>)*>)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		position int
	}{
		{"unclosed marker", `<@NOUN`, 0},
		{"closing without opening", `@NOUN>`, 5},
		{"nested markers", `<a<@NOUN>>`, 2},
		{"empty pattern", `   `, -1},
		{"duplicate constraint", `<@NOUN@VERB>`, -1},
		{"flag with value", `<!yes>`, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.pattern)
			require.Error(t, err)
			assert.True(t, errors.Is(err, natexerrors.ErrCompilation))

			var compErr *natexerrors.CompilationError
			require.True(t, errors.As(err, &compErr))
			assert.Equal(t, tt.position, compErr.Position)
			assert.Equal(t, tt.pattern, compErr.Pattern)
		})
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	patterns := []string{`<>`, `@ADP <@PROPN>`, `<(Affe|@NOUN|#AMOD)>`, `<:OBJ>`}
	for _, p := range patterns {
		first, err := Translate(p)
		require.NoError(t, err)
		second, err := Translate(p)
		require.NoError(t, err)
		assert.Equal(t, first, second, p)
	}
}

func TestCompile(t *testing.T) {
	c, err := Compile(`<@NOUN>`, IgnoreCase)
	require.NoError(t, err)

	assert.Equal(t, `<@NOUN>`, c.Source)
	assert.Equal(t, `(<[^<@]*@NOUN[^>]*>)`, c.String())
	assert.Equal(t, IgnoreCase, c.Flags)
	assert.True(t, c.Searcher().MatchString("<the@DET#DET> <lights@noun#OBJ>"))
	assert.False(t, c.Anchored().MatchString("<the@DET#DET> <lights@NOUN#OBJ>"))
	assert.True(t, c.Anchored().MatchString("<lights@NOUN#OBJ>"))
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := Compile(`@(NOUN`, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, natexerrors.ErrCompilation))
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(`<@NOUN`, 0) })
	assert.NotPanics(t, func() { MustCompile(`<@NOUN>`, 0) })
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags("im")
	require.NoError(t, err)
	assert.Equal(t, IgnoreCase|Multiline, f)
	assert.Equal(t, "im", f.String())
	assert.Equal(t, "(?im)", f.prefix())

	f, err = ParseFlags("")
	require.NoError(t, err)
	assert.Equal(t, Flag(0), f)
	assert.Equal(t, "", f.prefix())

	_, err = ParseFlags("x")
	assert.True(t, errors.Is(err, natexerrors.ErrInvalidInput))
}

func TestDescriptor_Render(t *testing.T) {
	tests := []struct {
		name string
		d    TagDescriptor
		want string
	}{
		{"empty", TagDescriptor{}, `<[^>]+>`},
		{"whitespace literal is empty", TagDescriptor{Literal: " ", Opened: true, Closed: true}, `<[^>]+>`},
		{"pos and flag", TagDescriptor{POS: "VERB", Flag: true, Opened: true, Closed: true}, `<[^<@]*@VERB#[^<@!]*![^>]*>`},
		{
			"selector with fields",
			TagDescriptor{Literal: "lights", Any: "OBJ", Opened: true, Closed: true},
			`<[^<]*(?:[@#]?OBJ(?:[ #!][^>]*)?|lights@[^<#]*[^>]*)>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Render())
		})
	}
}

func TestSplit(t *testing.T) {
	segs := split(protect(`@ADP <@PROPN>  x\<y`))
	kinds := make([]segmentKind, len(segs))
	texts := make([]string, len(segs))
	for i, s := range segs {
		kinds[i] = s.kind
		texts[i] = s.text
	}
	assert.Equal(t, []segmentKind{tokenSegment, spaceSegment, tokenSegment, spaceSegment, tokenSegment}, kinds)
	assert.Equal(t, []string{"@ADP", " ", "<@PROPN>", "  ", "x" + escapedOpen + "y"}, texts)
}

func TestExtract_EscapedMarkers(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		literal string
		pos     string
	}{
		{"escaped marker is literal", `<\@noun>`, `\@noun`, ""},
		{"escaped backslash before marker", `<\\@noun>`, `\\`, "NOUN"},
		{"three backslashes escape the marker", `<\\\@noun>`, `\\\@noun`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := extract(tt.text, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.literal, d.Literal)
			assert.Equal(t, tt.pos, d.POS)
		})
	}
}

func TestUpperValue(t *testing.T) {
	assert.Equal(t, `N\w+`, upperValue(`n\w+`))
	assert.Equal(t, `\p{Lu}X`, upperValue(`\p{Lu}x`))
	assert.Equal(t, `(NOUN|PROPN)`, upperValue(`(noun|propn)`))
}

func TestNonCapturing(t *testing.T) {
	assert.Equal(t, `(?:a)[(]\(b(?:c)`, nonCapturing(`(a)[(]\(b(?:c)`))
	assert.Equal(t, `[]()](?:x)`, nonCapturing(`[]()](x)`))
	assert.Equal(t, `(?i)(?:x)`, nonCapturing(`(?i)(x)`))
}

package representation

import "github.com/gcbaptista/go-natex/model"

// SpanMap maps every byte offset of a representation string to the original
// span of the token or separator rendered there. It holds one extra trailing
// entry for the offset one past the end of the representation, which points
// at the empty span at the end of the original text.
type SpanMap []model.Span

// At returns the span recorded for representation offset i.
func (m SpanMap) At(i int) (model.Span, bool) {
	if i < 0 || i >= len(m) {
		return model.Span{}, false
	}
	return m[i], true
}

// Resolve translates a raw representation interval [start, end) into original
// coordinates. Both bounds take the START of the span recorded at their
// offset, so the upper bound lands on whatever begins at or after the raw end.
func (m SpanMap) Resolve(start, end int) (model.Span, bool) {
	lo, ok := m.At(start)
	if !ok {
		return model.Span{}, false
	}
	hi, ok := m.At(end)
	if !ok {
		return model.Span{}, false
	}
	if hi.Start < lo.Start {
		return model.Span{Start: lo.Start, End: lo.Start}, true
	}
	return model.Span{Start: lo.Start, End: hi.Start}, true
}

func (m SpanMap) fill(span model.Span, n int) SpanMap {
	for i := 0; i < n; i++ {
		m = append(m, span)
	}
	return m
}

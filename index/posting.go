package index

// PostingEntry lists the tokens of one sentence that carry a key.
type PostingEntry struct {
	SentenceID string
	Positions  []int // token indexes within the sentence
}

// PostingList holds the entries of one key in insertion order.
type PostingList []PostingEntry

// without returns the list minus the entry of sentenceID.
func (pl PostingList) without(sentenceID string) PostingList {
	for i, entry := range pl {
		if entry.SentenceID == sentenceID {
			return append(pl[:i:i], pl[i+1:]...)
		}
	}
	return pl
}

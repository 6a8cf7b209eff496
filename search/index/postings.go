package index

import "errors"

const (
	// MaxPosition is the highest token position a source may emit for a
	// hit. Positions are 1-based; 0 is reserved.
	MaxPosition = 1 << 14

	// MaxPhraseSize is the longest phrase that can be tested against a
	// position space.
	MaxPhraseSize = 16
)

// ErrCorruptPostings indicates an undecodable or out-of-range posting.
// It means the segment itself is damaged, so the execution that hit it
// is aborted rather than retried.
var ErrCorruptPostings = errors.New("corrupt postings")

// PostingsIterator enumerates the documents a term occurs in, in
// ascending doc id order, along with the token positions of each
// occurrence.
type PostingsIterator interface {
	// Next advances to the first document with id >= docId and reports
	// whether one exists. docId must not decrease across calls.
	Next(docId DocumentId) bool

	// DocId returns the current document. Only valid after Next
	// returned true.
	DocId() DocumentId

	// Positions returns the sorted 1-based token positions of the term
	// in the current document. The slice is only valid until the next
	// call to Next.
	Positions() []uint32

	// Err returns the first decode error encountered. Next returns
	// false once an error occurred.
	Err() error
}

// Source is one independently scanned index partition. Implementations
// must be safe for concurrent TermPostings calls only if the returned
// iterators are independent, which is all the executor relies on: each
// execution owns its own iterators and never shares them.
type Source interface {
	Id() uint32

	// TermPostings returns an iterator over the postings of term, or
	// nil if the term does not occur in this source.
	TermPostings(term []byte) (PostingsIterator, error)
}

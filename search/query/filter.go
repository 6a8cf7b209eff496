package query

import "github.com/caracal-search/caracal/search/index"

// MatchedTerm is the hit evidence for one query term in the candidate
// document.
type MatchedTerm struct {
	Id TermId

	// Hits are the sorted 1-based token positions of the term. The
	// slice is borrowed from the source's decoder.
	Hits []uint32
}

// Candidate is one document under consideration, with its position
// evidence. It is only valid for the duration of the Consider call:
// the executor reuses the position space and the hit buffers for the
// next document.
type Candidate struct {
	DocId     index.DocumentId
	Terms     []MatchedTerm
	Positions *PositionSpace
}

// MatchedDocumentsFilter receives every candidate document of one
// source execution and decides whether and how to record it. A fresh
// instance is created per source; implementations need no locking.
type MatchedDocumentsFilter interface {
	Consider(candidate *Candidate)
}

// DocumentFilter optionally gates candidates before they are
// materialized and considered. Shared across sources, so it must be
// safe for concurrent Accept calls during parallel execution.
type DocumentFilter interface {
	Accept(docId index.DocumentId) bool
}

type DocumentFilterFunc func(docId index.DocumentId) bool

func (f DocumentFilterFunc) Accept(docId index.DocumentId) bool {
	return f(docId)
}

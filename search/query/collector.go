package query

import (
	"container/heap"

	"github.com/RoaringBitmap/roaring/v2"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TopDocsFilter
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// TopDocsFilter keeps the topN documents with the most hits among
// those satisfying every phrase of the query. Scoring here is plain
// hit counting; ranking policies live in the filter, not in the
// executor, so a different policy is just a different filter.
type TopDocsFilter struct {
	phrases [][]TermId
	topN    int
	minHeap *docScoreHeap
}

func NewTopDocsFilter(q *Query, topN int) *TopDocsFilter {
	return &TopDocsFilter{
		phrases: q.Phrases(),
		topN:    topN,
		minHeap: &docScoreHeap{},
	}
}

func (f *TopDocsFilter) Consider(candidate *Candidate) {
	if !matchesPhrases(candidate, f.phrases) {
		return
	}

	score := float32(0)
	for _, term := range candidate.Terms {
		score += float32(len(term.Hits))
	}

	if f.minHeap.Len() < f.topN {
		heap.Push(f.minHeap, &DocScore{DocId: candidate.DocId, Score: score})
		return
	}

	if score > f.minHeap.items[0].Score {
		heap.Pop(f.minHeap)
		heap.Push(f.minHeap, &DocScore{DocId: candidate.DocId, Score: score})
	}
}

// Get drains the filter, best score first.
func (f *TopDocsFilter) Get() []*DocScore {
	results := make([]*DocScore, f.minHeap.Len())

	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(f.minHeap).(*DocScore)
	}

	return results
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// BitmapDocsFilter
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// BitmapDocsFilter records every phrase-satisfying candidate in a
// bitmap. Handy when the caller only needs the matching doc id set.
type BitmapDocsFilter struct {
	phrases [][]TermId
	Docs    *roaring.Bitmap
}

func NewBitmapDocsFilter(q *Query) *BitmapDocsFilter {
	return &BitmapDocsFilter{
		phrases: q.Phrases(),
		Docs:    roaring.NewBitmap(),
	}
}

func (f *BitmapDocsFilter) Consider(candidate *Candidate) {
	if !matchesPhrases(candidate, f.phrases) {
		return
	}

	f.Docs.Add(uint32(candidate.DocId))
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Helpers
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

func matchesPhrases(candidate *Candidate, phrases [][]TermId) bool {
	for _, phrase := range phrases {
		if !candidate.Positions.TestPhrase(phrase, termHits(candidate, phrase[0])) {
			return false
		}
	}

	return true
}

func termHits(candidate *Candidate, id TermId) []uint32 {
	for i := range candidate.Terms {
		if candidate.Terms[i].Id == id {
			return candidate.Terms[i].Hits
		}
	}

	return nil
}

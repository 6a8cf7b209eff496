package query

import "github.com/caracal-search/caracal/search/index"

type DocScore struct {
	DocId index.DocumentId
	Score float32
}

// min-heap on score, used to keep the N best candidates
type docScoreHeap struct {
	items []*DocScore
}

func (h *docScoreHeap) Len() int { return len(h.items) }

func (h *docScoreHeap) Less(i, j int) bool {
	return h.items[i].Score < h.items[j].Score
}

func (h *docScoreHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *docScoreHeap) Push(item any) {
	h.items = append(h.items, item.(*DocScore))
}

func (h *docScoreHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}

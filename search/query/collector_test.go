package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caracal-search/caracal/search/index"
)

func considerHits(t *testing.T, filter MatchedDocumentsFilter, space *PositionSpace, docId index.DocumentId, hitsByTerm map[TermId][]uint32) {
	t.Helper()

	space.Reset()

	terms := make([]MatchedTerm, 0, len(hitsByTerm))
	for id, hits := range hitsByTerm {
		for _, pos := range hits {
			space.Set(id, pos)
		}

		terms = append(terms, MatchedTerm{Id: id, Hits: hits})
	}

	filter.Consider(&Candidate{DocId: docId, Terms: terms, Positions: space})
}

func TestTopDocsFilterKeepsBestN(t *testing.T) {
	q := NewQuery()
	cat := q.RegisterTerm([]byte("cat"))

	filter := NewTopDocsFilter(q, 2)

	space, err := NewPositionSpace(100)
	assert.NoError(t, err)

	considerHits(t, filter, space, 1, map[TermId][]uint32{cat: {1}})
	considerHits(t, filter, space, 2, map[TermId][]uint32{cat: {1, 2, 3}})
	considerHits(t, filter, space, 3, map[TermId][]uint32{cat: {1, 2}})

	results := filter.Get()

	assert.Len(t, results, 2)
	assert.Equal(t, index.DocumentId(2), results[0].DocId)
	assert.Equal(t, float32(3), results[0].Score)
	assert.Equal(t, index.DocumentId(3), results[1].DocId)
	assert.Equal(t, float32(2), results[1].Score)
}

func TestTopDocsFilterEnforcesPhrases(t *testing.T) {
	q := NewQuery()
	ids, err := q.RegisterPhrase([]byte("cat"), []byte("dog"))
	assert.NoError(t, err)
	cat, dog := ids[0], ids[1]

	filter := NewTopDocsFilter(q, 10)

	space, err := NewPositionSpace(100)
	assert.NoError(t, err)

	considerHits(t, filter, space, 1, map[TermId][]uint32{cat: {3}, dog: {4}})
	considerHits(t, filter, space, 2, map[TermId][]uint32{cat: {3}, dog: {6}})
	considerHits(t, filter, space, 3, map[TermId][]uint32{dog: {4}})

	results := filter.Get()

	assert.Len(t, results, 1)
	assert.Equal(t, index.DocumentId(1), results[0].DocId)
}

func TestBitmapDocsFilter(t *testing.T) {
	q := NewQuery()
	ids, err := q.RegisterPhrase([]byte("cat"), []byte("dog"))
	assert.NoError(t, err)
	cat, dog := ids[0], ids[1]

	filter := NewBitmapDocsFilter(q)

	space, err := NewPositionSpace(100)
	assert.NoError(t, err)

	considerHits(t, filter, space, 4, map[TermId][]uint32{cat: {8}, dog: {9}})
	considerHits(t, filter, space, 9, map[TermId][]uint32{cat: {8}})

	assert.True(t, filter.Docs.Contains(4))
	assert.False(t, filter.Docs.Contains(9))
	assert.Equal(t, uint64(1), filter.Docs.GetCardinality())
}

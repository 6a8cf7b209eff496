package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemorySourceAddDocuments(t *testing.T) {
	source := NewMemorySource(1)

	source.AddDocuments([]Document{
		{{Name: "body", FieldType: TextFieldType, Value: []byte("The cat sat on the mat")}},
		{{Name: "body", FieldType: TextFieldType, Value: []byte("cat cat cat")}},
	})

	assert.Equal(t, DocumentId(2), source.DocCount())

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)

	assert.True(t, it.Next(0))
	assert.Equal(t, DocumentId(0), it.DocId())
	assert.Equal(t, []uint32{2}, it.Positions())

	assert.True(t, it.Next(1))
	assert.Equal(t, DocumentId(1), it.DocId())
	assert.Equal(t, []uint32{1, 2, 3}, it.Positions())

	assert.False(t, it.Next(2))

	// Tokenization lowercases
	it, err = source.TermPostings([]byte("the"))
	assert.NoError(t, err)
	assert.True(t, it.Next(0))
	assert.Equal(t, []uint32{1, 5}, it.Positions())
}

func TestMemorySourceIteratorAdvancesToRequestedDoc(t *testing.T) {
	source := NewMemorySource(1)
	source.AddTermHits([]byte("cat"), 2, []uint32{1})
	source.AddTermHits([]byte("cat"), 8, []uint32{4})
	source.AddTermHits([]byte("cat"), 15, []uint32{2})

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)

	assert.True(t, it.Next(0))
	assert.Equal(t, DocumentId(2), it.DocId())

	assert.True(t, it.Next(5))
	assert.Equal(t, DocumentId(8), it.DocId())
	assert.Equal(t, []uint32{4}, it.Positions())

	assert.True(t, it.Next(9))
	assert.Equal(t, DocumentId(15), it.DocId())

	assert.False(t, it.Next(16))
	assert.NoError(t, it.Err())
}

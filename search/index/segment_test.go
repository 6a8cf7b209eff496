package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeSegment(t *testing.T, directory string, build func(writer *SegmentWriter)) *SegmentSource {
	t.Helper()

	writer := NewSegmentWriter()
	build(writer)

	if err := writer.Write(directory, "1"); err != nil {
		t.Fatal(err)
	}

	source, err := NewSegmentSource(directory, 1)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { source.Close() })

	return source
}

func TestSegmentRoundTrip(t *testing.T) {
	source := writeSegment(t, t.TempDir(), func(writer *SegmentWriter) {
		writer.Doc(0)
		writer.Term([]byte("cat"))
		writer.Term([]byte("dog"))
		writer.Term([]byte("cat"))

		writer.Doc(3)
		writer.Term([]byte("dog"))
	})

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)

	assert.True(t, it.Next(0))
	assert.Equal(t, DocumentId(0), it.DocId())
	assert.Equal(t, []uint32{1, 3}, it.Positions())
	assert.False(t, it.Next(1))
	assert.NoError(t, it.Err())

	it, err = source.TermPostings([]byte("dog"))
	assert.NoError(t, err)

	assert.True(t, it.Next(0))
	assert.Equal(t, DocumentId(0), it.DocId())
	assert.Equal(t, []uint32{2}, it.Positions())

	assert.True(t, it.Next(1))
	assert.Equal(t, DocumentId(3), it.DocId())
	assert.Equal(t, []uint32{1}, it.Positions())

	assert.False(t, it.Next(4))
	assert.NoError(t, it.Err())
}

func TestSegmentAbsentTerm(t *testing.T) {
	source := writeSegment(t, t.TempDir(), func(writer *SegmentWriter) {
		writer.Doc(0)
		writer.Term([]byte("cat"))
	})

	it, err := source.TermPostings([]byte("unicorn"))
	assert.NoError(t, err)
	assert.Nil(t, it)
}

func TestSegmentMultipleBlocks(t *testing.T) {
	numDocs := DocumentId(300) // forces 3 blocks of at most 128 docs

	source := writeSegment(t, t.TempDir(), func(writer *SegmentWriter) {
		for docId := DocumentId(0); docId < numDocs; docId++ {
			writer.Doc(docId)
			writer.Term([]byte("filler"))
			writer.Term([]byte("cat"))
		}
	})

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)

	docId := DocumentId(0)
	count := 0
	for it.Next(docId) {
		assert.Equal(t, docId, it.DocId())
		assert.Equal(t, []uint32{2}, it.Positions())
		count++
		docId = it.DocId() + 1
	}

	assert.NoError(t, it.Err())
	assert.Equal(t, int(numDocs), count)
}

func TestSegmentIteratorSkipsBlocks(t *testing.T) {
	source := writeSegment(t, t.TempDir(), func(writer *SegmentWriter) {
		for docId := DocumentId(0); docId < 300; docId++ {
			writer.Doc(docId)
			writer.Term([]byte("cat"))
		}
	})

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)

	// Lands in the second block without visiting the docs before it
	assert.True(t, it.Next(200))
	assert.Equal(t, DocumentId(200), it.DocId())

	assert.True(t, it.Next(299))
	assert.Equal(t, DocumentId(299), it.DocId())

	assert.False(t, it.Next(300))
	assert.NoError(t, it.Err())
}

func TestSegmentIteratorCorruptData(t *testing.T) {
	// Truncated in the middle of a block header
	it := newSegmentPostingsIterator([]byte{5, 0, 0})

	assert.False(t, it.Next(0))
	assert.ErrorIs(t, it.Err(), ErrCorruptPostings)

	// Stays failed
	assert.False(t, it.Next(0))
}

func TestSegmentPositionsPastLimitDropped(t *testing.T) {
	source := writeSegment(t, t.TempDir(), func(writer *SegmentWriter) {
		writer.Doc(0)
		for i := 0; i < MaxPosition+5; i++ {
			writer.Term([]byte("filler"))
		}
		writer.Term([]byte("cat"))
	})

	it, err := source.TermPostings([]byte("cat"))
	assert.NoError(t, err)
	assert.Nil(t, it)

	it, err = source.TermPostings([]byte("filler"))
	assert.NoError(t, err)
	assert.True(t, it.Next(0))
	assert.Len(t, it.Positions(), MaxPosition)
}

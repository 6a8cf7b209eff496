package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

type segmentPostingsIterator struct {
	reader *bytes.Reader
	err    error

	// Block header
	blockHeaderDecoded bool
	header             [blockHeaderSize]byte
	numDocs            byte
	firstDocId         DocumentId
	lastDocId          DocumentId
	length             uint32
	nextBlockOffset    int64

	// Block data
	blockDataDecoded bool
	indexInBlock     int
	blockDocIds      []DocumentId
	hitOffsets       []uint32
	hitsBuffer       []uint32
}

func newSegmentPostingsIterator(data []byte) *segmentPostingsIterator {
	return &segmentPostingsIterator{
		reader:       bytes.NewReader(data),
		indexInBlock: -1,
		blockDocIds:  make([]DocumentId, 0, maxDocsPerBlock),
		hitOffsets:   make([]uint32, 0, maxDocsPerBlock+1),
	}
}

func (it *segmentPostingsIterator) Next(docId DocumentId) bool {
	for {
		if !it.nextShallow(docId) {
			return false
		}

		if !it.blockDataDecoded {
			if err := it.decodeBlockData(); err != nil {
				it.err = err
				return false
			}
		}

		for ; it.indexInBlock < len(it.blockDocIds); it.indexInBlock++ {
			if docId <= it.blockDocIds[it.indexInBlock] {
				return true
			}
		}

		// Exhausted the decoded block, move to the next one
		docId = it.lastDocId + 1
	}
}

func (it *segmentPostingsIterator) nextShallow(docId DocumentId) bool {
	if it.err != nil {
		return false
	}

	if !it.blockHeaderDecoded {
		if it.reader.Len() == 0 {
			return false
		}

		if err := it.decodeBlockHeader(); err != nil {
			it.err = err
			return false
		}

		it.blockHeaderDecoded = true
	}

	for docId > it.lastDocId {
		if it.nextBlockOffset >= it.reader.Size() {
			return false
		}

		if _, err := it.reader.Seek(it.nextBlockOffset, io.SeekStart); err != nil {
			it.err = err
			return false
		}

		if err := it.decodeBlockHeader(); err != nil {
			it.err = err
			return false
		}
	}

	return true
}

func (it *segmentPostingsIterator) decodeBlockHeader() error {
	start, err := it.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	if _, err := io.ReadFull(it.reader, it.header[:]); err != nil {
		return fmt.Errorf("block header at offset %d: %w", start, ErrCorruptPostings)
	}

	it.numDocs = it.header[0]
	it.firstDocId = DocumentId(binary.BigEndian.Uint32(it.header[1:5]))
	it.lastDocId = DocumentId(binary.BigEndian.Uint32(it.header[5:9]))
	it.length = binary.BigEndian.Uint32(it.header[9:13])

	if it.length < blockHeaderSize {
		return fmt.Errorf("block length %d at offset %d: %w", it.length, start, ErrCorruptPostings)
	}

	it.nextBlockOffset = start + int64(it.length)
	it.blockDataDecoded = false

	return nil
}

func (it *segmentPostingsIterator) decodeBlockData() error {
	it.blockDocIds = it.blockDocIds[:0]
	it.hitOffsets = it.hitOffsets[:0]
	it.hitsBuffer = it.hitsBuffer[:0]

	docId := DocumentId(0)
	for i := 0; i < int(it.numDocs); i++ {
		delta, err := binary.ReadUvarint(it.reader)
		if err != nil {
			return fmt.Errorf("doc ids: %w", ErrCorruptPostings)
		}

		docId += DocumentId(delta)
		it.blockDocIds = append(it.blockDocIds, docId)
	}

	for i := 0; i < int(it.numDocs); i++ {
		it.hitOffsets = append(it.hitOffsets, uint32(len(it.hitsBuffer)))

		count, err := binary.ReadUvarint(it.reader)
		if err != nil {
			return fmt.Errorf("hit count: %w", ErrCorruptPostings)
		}

		pos := uint32(0)
		for j := 0; j < int(count); j++ {
			delta, err := binary.ReadUvarint(it.reader)
			if err != nil {
				return fmt.Errorf("hit positions: %w", ErrCorruptPostings)
			}

			pos += uint32(delta)
			it.hitsBuffer = append(it.hitsBuffer, pos)
		}
	}

	it.hitOffsets = append(it.hitOffsets, uint32(len(it.hitsBuffer)))

	it.indexInBlock = 0
	it.blockDataDecoded = true

	return nil
}

func (it *segmentPostingsIterator) DocId() DocumentId {
	return it.blockDocIds[it.indexInBlock]
}

func (it *segmentPostingsIterator) Positions() []uint32 {
	return it.hitsBuffer[it.hitOffsets[it.indexInBlock]:it.hitOffsets[it.indexInBlock+1]]
}

func (it *segmentPostingsIterator) Err() error {
	return it.err
}

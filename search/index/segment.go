package index

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"strconv"
)

const maxDocsPerBlock = 128

/*
Block:
  - Header:
	- [0] num docs (byte)
	- [1] first doc id (uint32)
	- [5] last doc id (uint32)
	- [9] length bytes (uint32)
  - Doc id deltas (uvarint)
  - Per doc: hit count (uvarint), then position deltas (uvarint)
*/
const blockHeaderSize = 13

type positionsFileWriter struct {
	file   *os.File
	offset int64
	writer *bufio.Writer
}

func newPositionsFileWriter(directory, source string) (*positionsFileWriter, error) {
	file, err := createFile(filepath.Join(directory, "segment."+source+".positions"))
	if err != nil {
		return nil, err
	}

	return &positionsFileWriter{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (writer *positionsFileWriter) WriteBlock(docIds []DocumentId, positions [][]uint32) (uint64, uint64, error) {
	blockStartOffset := writer.offset

	buffer := make([]byte, 0, blockHeaderSize+len(docIds)*8)

	buffer = append(buffer, byte(len(docIds)))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(docIds[0]))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(docIds[len(docIds)-1]))
	buffer = binary.BigEndian.AppendUint32(buffer, 0) // block length, patched below

	previousDocId := DocumentId(0)
	for i, docId := range docIds {
		delta := docId
		if i > 0 {
			delta = docId - previousDocId
		}
		buffer = binary.AppendUvarint(buffer, uint64(delta))
		previousDocId = docId
	}

	for _, docPositions := range positions {
		buffer = binary.AppendUvarint(buffer, uint64(len(docPositions)))

		previousPos := uint32(0)
		for _, pos := range docPositions {
			buffer = binary.AppendUvarint(buffer, uint64(pos-previousPos))
			previousPos = pos
		}
	}

	binary.BigEndian.PutUint32(buffer[9:], uint32(len(buffer)))

	if _, err := writer.writer.Write(buffer); err != nil {
		return 0, 0, err
	}

	writer.offset = blockStartOffset + int64(len(buffer))

	return uint64(blockStartOffset), uint64(writer.offset), nil
}

func (writer *positionsFileWriter) Close() error {
	if err := writer.writer.Flush(); err != nil {
		return err
	}

	return writer.file.Close()
}

type termHit struct {
	docId DocumentId
	pos   uint32
}

// SegmentWriter accumulates per-term hits in memory and writes one
// immutable segment: a positions file of delta-coded blocks and a
// sorted dictionary mapping each term to its postings range.
type SegmentWriter struct {
	docId    DocumentId
	position uint32
	postings map[string][]termHit
}

func NewSegmentWriter() *SegmentWriter {
	return &SegmentWriter{
		postings: make(map[string][]termHit),
	}
}

// Doc starts a new document. Doc ids must be added in ascending order.
func (w *SegmentWriter) Doc(docId DocumentId) {
	w.docId = docId
	w.position = 0
}

// Term records the next token of the current document. Positions are
// 1-based; tokens past MaxPosition are not indexed.
func (w *SegmentWriter) Term(term []byte) {
	w.position++

	if w.position > MaxPosition {
		return
	}

	termString := string(term)
	w.postings[termString] = append(w.postings[termString], termHit{docId: w.docId, pos: w.position})
}

func (w *SegmentWriter) Write(directory, source string) error {
	positionsWriter, err := newPositionsFileWriter(directory, source)
	if err != nil {
		return err
	}

	dictWriter, err := newDictionaryWriter(directory, source)
	if err != nil {
		return err
	}

	sortedTerms := make([]string, 0, len(w.postings))
	for term := range w.postings {
		sortedTerms = append(sortedTerms, term)
	}
	slices.Sort(sortedTerms)

	termDocIds := make([]DocumentId, 0, 100)
	termPositions := make([][]uint32, 0, 100)
	termInfo := &TermInfo{}

	for _, term := range sortedTerms {
		hits := w.postings[term]

		termDocIds = termDocIds[:0]
		termPositions = termPositions[:0]

		for _, hit := range hits {
			if len(termDocIds) == 0 || termDocIds[len(termDocIds)-1] != hit.docId {
				termDocIds = append(termDocIds, hit.docId)
				termPositions = append(termPositions, nil)
			}

			last := len(termPositions) - 1
			termPositions[last] = append(termPositions[last], hit.pos)
		}

		firstOffset := uint64(0)
		firstOffsetSet := false
		endOffset := uint64(0)

		for i := 0; i < len(termDocIds); i += maxDocsPerBlock {
			end := min(i+maxDocsPerBlock, len(termDocIds))

			startOffset, blockEndOffset, err := positionsWriter.WriteBlock(termDocIds[i:end], termPositions[i:end])
			if err != nil {
				return err
			}

			if !firstOffsetSet {
				firstOffset = startOffset
				firstOffsetSet = true
			}

			endOffset = blockEndOffset
		}

		termInfo.DocFreq = uint32(len(termDocIds))
		termInfo.PositionsStartOffset = firstOffset
		termInfo.PositionsEndOffset = endOffset

		if err := dictWriter.Write([]byte(term), termInfo); err != nil {
			return err
		}
	}

	if err := positionsWriter.Close(); err != nil {
		return err
	}

	return dictWriter.Close()
}

// SegmentSource reads one on-disk segment through mmap.
type SegmentSource struct {
	id         uint32
	dictionary *DictionaryReader
	positions  *FileReader
}

func NewSegmentSource(directory string, sourceId uint32) (*SegmentSource, error) {
	source := strconv.FormatUint(uint64(sourceId), 10)

	dictionary, err := newDictionaryReader(directory, source)
	if err != nil {
		return nil, err
	}

	positions, err := newFileReader(filepath.Join(directory, "segment."+source+".positions"))
	if err != nil {
		_ = dictionary.Close()
		return nil, err
	}

	return &SegmentSource{
		id:         sourceId,
		dictionary: dictionary,
		positions:  positions,
	}, nil
}

func (s *SegmentSource) Id() uint32 {
	return s.id
}

func (s *SegmentSource) TermPostings(term []byte) (PostingsIterator, error) {
	termInfo := s.dictionary.Get(term)
	if termInfo == nil {
		return nil, nil
	}

	data := s.positions.Slice(termInfo.PositionsStartOffset, termInfo.PositionsEndOffset)

	return newSegmentPostingsIterator(data), nil
}

func (s *SegmentSource) Close() error {
	if err := s.dictionary.Close(); err != nil {
		_ = s.positions.Close()
		return err
	}

	return s.positions.Close()
}

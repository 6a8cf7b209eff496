package index

// MemorySource is an in-memory positional index over a set of
// documents. It exists for small indexes and tests; on-disk segments
// use SegmentSource.
type MemorySource struct {
	id        uint32
	docCount  DocumentId
	postings  map[string]*memoryPosting
	tokenizer *StandardTokenizer
}

type memoryPosting struct {
	docIds    []DocumentId
	positions [][]uint32
}

func NewMemorySource(id uint32) *MemorySource {
	return &MemorySource{
		id:        id,
		postings:  make(map[string]*memoryPosting),
		tokenizer: NewStandardTokenizer(),
	}
}

// AddTermHits records that term occurs in docId at the given 1-based
// token positions. Doc ids must be added in ascending order per term,
// positions sorted.
func (s *MemorySource) AddTermHits(term []byte, docId DocumentId, positions []uint32) {
	posting, exists := s.postings[string(term)]
	if !exists {
		posting = &memoryPosting{}
		s.postings[string(term)] = posting
	}

	posting.docIds = append(posting.docIds, docId)
	posting.positions = append(posting.positions, positions)

	if docId >= s.docCount {
		s.docCount = docId + 1
	}
}

// AddDocuments tokenizes and indexes docs, assigning doc ids after the
// ones already present. Text fields are tokenized; byte fields are
// indexed as a single term.
func (s *MemorySource) AddDocuments(docs []Document) {
	hits := make(map[string][]uint32, 50)

	for _, doc := range docs {
		docId := s.docCount
		position := uint32(0)

		clear(hits)

		for _, field := range doc {
			switch field.FieldType {
			case TextFieldType:
				s.tokenizer.Reset(field.Value)
				for {
					token, ok := s.tokenizer.NextToken()
					if !ok {
						break
					}

					position++
					if position > MaxPosition {
						continue
					}

					hits[string(token.Text)] = append(hits[string(token.Text)], position)
				}
			case ByteFieldType:
				position++
				if position <= MaxPosition {
					hits[string(field.Value)] = append(hits[string(field.Value)], position)
				}
			}
		}

		for term, positions := range hits {
			s.AddTermHits([]byte(term), docId, append([]uint32(nil), positions...))
		}

		s.docCount++
	}
}

func (s *MemorySource) Id() uint32 {
	return s.id
}

func (s *MemorySource) DocCount() DocumentId {
	return s.docCount
}

func (s *MemorySource) TermPostings(term []byte) (PostingsIterator, error) {
	posting, exists := s.postings[string(term)]
	if !exists {
		return nil, nil
	}

	return &memoryPostingsIterator{posting: posting}, nil
}

type memoryPostingsIterator struct {
	posting *memoryPosting
	index   int
}

func (it *memoryPostingsIterator) Next(docId DocumentId) bool {
	for it.index < len(it.posting.docIds) && it.posting.docIds[it.index] < docId {
		it.index++
	}

	return it.index < len(it.posting.docIds)
}

func (it *memoryPostingsIterator) DocId() DocumentId {
	return it.posting.docIds[it.index]
}

func (it *memoryPostingsIterator) Positions() []uint32 {
	return it.posting.positions[it.index]
}

func (it *memoryPostingsIterator) Err() error {
	return nil
}

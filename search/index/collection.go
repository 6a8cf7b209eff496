package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/rand"
)

// SourcesCollection is an ordered set of index sources, each paired
// with its masked-documents registry. Sources share no mutable state,
// which is what allows executing them in parallel.
type SourcesCollection struct {
	sources    []Source
	registries []*MaskedRegistry
}

func NewSourcesCollection() *SourcesCollection {
	return &SourcesCollection{}
}

func (c *SourcesCollection) Add(source Source, registry *MaskedRegistry) {
	if registry == nil {
		registry = NewMaskedRegistry(nil)
	}

	c.sources = append(c.sources, source)
	c.registries = append(c.registries, registry)
}

func (c *SourcesCollection) Len() int {
	return len(c.sources)
}

func (c *SourcesCollection) Source(i int) Source {
	return c.sources[i]
}

// ScannerRegistryFor returns the masked-documents registry scoped to
// the i-th source.
func (c *SourcesCollection) ScannerRegistryFor(i int) *MaskedRegistry {
	return c.registries[i]
}

func (c *SourcesCollection) Close() error {
	var firstErr error

	for _, source := range c.sources {
		if closer, ok := source.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

type Commit struct {
	SourceIds []uint32 `json:"sourceIds"`
	MaskedId  *uint32  `json:"maskedId,omitempty"`
}

func readCommit(directory string) (*Commit, error) {
	commitFile, err := os.Open(filepath.Join(directory, "commit"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Commit{SourceIds: make([]uint32, 0)}, nil
		}

		return nil, err
	}

	defer commitFile.Close()

	var commit Commit
	if err := json.NewDecoder(commitFile).Decode(&commit); err != nil {
		return nil, err
	}

	return &commit, nil
}

// OpenCollection loads every committed segment in directory along with
// its masked-documents set.
func OpenCollection(directory string) (*SourcesCollection, error) {
	commit, err := readCommit(directory)
	if err != nil {
		return nil, err
	}

	var maskedReader MaskedReader

	if commit.MaskedId == nil {
		maskedReader = newNullMaskedReader()
	} else {
		fileMaskedReader, err := newFileMaskedReader(directory, strconv.FormatUint(uint64(*commit.MaskedId), 10))
		if err != nil {
			return nil, err
		}

		defer fileMaskedReader.Close()
		maskedReader = fileMaskedReader
	}

	collection := NewSourcesCollection()

	for _, sourceId := range commit.SourceIds {
		source, err := NewSegmentSource(directory, sourceId)
		if err != nil {
			_ = collection.Close()
			return nil, err
		}

		maskedDocIds, err := maskedReader.GetMaskedDocIdsForSource(sourceId)
		if err != nil {
			_ = source.Close()
			_ = collection.Close()
			return nil, err
		}

		collection.Add(source, NewMaskedRegistry(maskedDocIds))
	}

	return collection, nil
}

type IndexWriter struct {
	directory string
	mutex     sync.Mutex
	tokenizer *StandardTokenizer
}

func NewIndexWriter(directory string) *IndexWriter {
	return &IndexWriter{
		directory: directory,
		tokenizer: NewStandardTokenizer(),
	}
}

// AddDocuments writes docs as a new segment and commits it. Local doc
// ids are assigned in batch order starting at 0.
func (writer *IndexWriter) AddDocuments(docs []Document) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	segmentWriter := NewSegmentWriter()

	for docId, doc := range docs {
		segmentWriter.Doc(DocumentId(docId))

		for _, field := range doc {
			switch field.FieldType {
			case TextFieldType:
				writer.tokenizer.Reset(field.Value)
				for {
					token, ok := writer.tokenizer.NextToken()
					if !ok {
						break
					}

					segmentWriter.Term(token.Text)
				}
			case ByteFieldType:
				segmentWriter.Term(field.Value)
			default:
				return fmt.Errorf("unknown field type %d", field.FieldType)
			}
		}
	}

	newSourceId := rand.Uint32()

	if err := segmentWriter.Write(writer.directory, strconv.FormatUint(uint64(newSourceId), 10)); err != nil {
		return err
	}

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	return writer.commit(append(commit.SourceIds, newSourceId), commit.MaskedId)
}

func (writer *IndexWriter) commit(sourceIds []uint32, maskedId *uint32) error {
	tempFilePath := filepath.Join(writer.directory, ".commit")
	tempFile, err := os.Create(tempFilePath)
	if err != nil {
		return err
	}

	defer tempFile.Close()

	commit := Commit{
		SourceIds: sourceIds,
		MaskedId:  maskedId,
	}

	if err := json.NewEncoder(tempFile).Encode(commit); err != nil {
		return err
	}

	return os.Rename(tempFilePath, filepath.Join(writer.directory, "commit"))
}

// DeleteDocuments masks every document containing any of the given
// exact terms, across all committed sources, by writing a new masked
// set and committing it. It never rewrites segment files.
func (writer *IndexWriter) DeleteDocuments(values [][]byte) error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	commit, err := readCommit(writer.directory)
	if err != nil {
		return err
	}

	var maskedReader MaskedReader
	var nextMaskedId uint32

	if commit.MaskedId == nil {
		maskedReader = newNullMaskedReader()
	} else {
		fileMaskedReader, err := newFileMaskedReader(writer.directory, strconv.FormatUint(uint64(*commit.MaskedId), 10))
		if err != nil {
			return err
		}

		defer fileMaskedReader.Close()
		nextMaskedId = *commit.MaskedId + 1
		maskedReader = fileMaskedReader
	}

	maskedDocIdsBySource := make(map[uint32]*roaring.Bitmap)

	for _, sourceId := range commit.SourceIds {
		maskedDocIds, err := maskedReader.GetMaskedDocIdsForSource(sourceId)
		if err != nil {
			return err
		}

		if maskedDocIds == nil {
			maskedDocIds = roaring.NewBitmap()
		}

		source, err := NewSegmentSource(writer.directory, sourceId)
		if err != nil {
			return err
		}

		if err := maskDocumentsForValues(source, values, maskedDocIds); err != nil {
			_ = source.Close()
			return err
		}

		if err := source.Close(); err != nil {
			return err
		}

		if !maskedDocIds.IsEmpty() {
			maskedDocIdsBySource[sourceId] = maskedDocIds
		}
	}

	maskedWriter := newMaskedWriter(maskedDocIdsBySource)

	if err := maskedWriter.Write(writer.directory, strconv.FormatUint(uint64(nextMaskedId), 10)); err != nil {
		return err
	}

	return writer.commit(commit.SourceIds, &nextMaskedId)
}

func maskDocumentsForValues(source Source, values [][]byte, maskedDocIds *roaring.Bitmap) error {
	for _, value := range values {
		it, err := source.TermPostings(value)
		if err != nil {
			return err
		}

		if it == nil {
			continue
		}

		docId := DocumentId(0)
		for it.Next(docId) {
			maskedDocIds.Add(uint32(it.DocId()))
			docId = it.DocId() + 1
		}

		if err := it.Err(); err != nil {
			return fmt.Errorf("source %d: %w", source.Id(), err)
		}
	}

	return nil
}

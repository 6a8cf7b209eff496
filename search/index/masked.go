package index

import (
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/caracal-search/caracal/search/utils"
)

// MaskedRegistry answers whether a document of one source is still
// alive. Masked documents are logically deleted and never reach the
// match filter.
type MaskedRegistry struct {
	masked *roaring.Bitmap
}

// NewMaskedRegistry wraps masked, which may be nil when no documents
// are masked.
func NewMaskedRegistry(masked *roaring.Bitmap) *MaskedRegistry {
	return &MaskedRegistry{masked: masked}
}

func (r *MaskedRegistry) Alive(docId DocumentId) bool {
	return r.masked == nil || !r.masked.Contains(uint32(docId))
}

type MaskedWriter struct {
	maskedDocIdsBySource map[uint32]*roaring.Bitmap
}

func newMaskedWriter(maskedDocIdsBySource map[uint32]*roaring.Bitmap) *MaskedWriter {
	return &MaskedWriter{maskedDocIdsBySource: maskedDocIdsBySource}
}

func (writer *MaskedWriter) Write(directory, maskedId string) error {
	kvStoreWriter, err := newKVStoreWriter(filepath.Join(directory, "masked."+maskedId))
	if err != nil {
		return err
	}

	sortedSourceIds := make([]uint32, 0, len(writer.maskedDocIdsBySource))
	for sourceId := range writer.maskedDocIdsBySource {
		sortedSourceIds = append(sortedSourceIds, sourceId)
	}

	slices.Sort(sortedSourceIds)

	for _, sourceId := range sortedSourceIds {
		maskedDocsForSource := writer.maskedDocIdsBySource[sourceId]

		buffer, err := maskedDocsForSource.ToBytes()
		if err != nil {
			return err
		}

		if err := kvStoreWriter.Append(utils.Uint32ToBytes(sourceId), buffer); err != nil {
			return err
		}
	}

	return kvStoreWriter.Close()
}

type MaskedReader interface {
	GetMaskedDocIdsForSource(sourceId uint32) (*roaring.Bitmap, error)
}

type NullMaskedReader struct {
}

func newNullMaskedReader() *NullMaskedReader {
	return &NullMaskedReader{}
}

func (reader *NullMaskedReader) GetMaskedDocIdsForSource(sourceId uint32) (*roaring.Bitmap, error) {
	return nil, nil
}

type FileMaskedReader struct {
	kvStoreReader *KVStoreReader
}

func newFileMaskedReader(directory, maskedId string) (*FileMaskedReader, error) {
	kvStoreReader, err := newKVStoreReader(filepath.Join(directory, "masked."+maskedId))
	if err != nil {
		return nil, err
	}

	return &FileMaskedReader{kvStoreReader: kvStoreReader}, nil
}

func (reader *FileMaskedReader) GetMaskedDocIdsForSource(sourceId uint32) (*roaring.Bitmap, error) {
	value := reader.kvStoreReader.Get(utils.Uint32ToBytes(sourceId))
	if value == nil {
		return nil, nil
	}

	maskedDocs := roaring.NewBitmap()
	if err := maskedDocs.UnmarshalBinary(value); err != nil {
		return nil, err
	}

	return maskedDocs, nil
}

func (reader *FileMaskedReader) Close() error {
	return reader.kvStoreReader.Close()
}

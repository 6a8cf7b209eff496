package index

import (
	"encoding/binary"
	"path/filepath"
)

// TermInfo locates a term's postings in the segment positions file.
type TermInfo struct {
	DocFreq              uint32
	PositionsStartOffset uint64
	PositionsEndOffset   uint64
}

type DictionaryWriter struct {
	buffer   []byte
	kvWriter *KVStoreWriter
}

func newDictionaryWriter(directory, source string) (*DictionaryWriter, error) {
	writer, err := newKVStoreWriter(filepath.Join(directory, "segment."+source+".dictionary"))
	if err != nil {
		return nil, err
	}

	return &DictionaryWriter{buffer: make([]byte, 20), kvWriter: writer}, nil
}

func (writer *DictionaryWriter) Write(term []byte, termInfo *TermInfo) error {
	binary.BigEndian.PutUint32(writer.buffer, termInfo.DocFreq)
	binary.BigEndian.PutUint64(writer.buffer[4:], termInfo.PositionsStartOffset)
	binary.BigEndian.PutUint64(writer.buffer[12:], termInfo.PositionsEndOffset)
	return writer.kvWriter.Append(term, writer.buffer)
}

func (writer *DictionaryWriter) Close() error {
	return writer.kvWriter.Close()
}

type DictionaryReader struct {
	kvReader *KVStoreReader
}

func newDictionaryReader(directory, source string) (*DictionaryReader, error) {
	kvReader, err := newKVStoreReader(filepath.Join(directory, "segment."+source+".dictionary"))
	if err != nil {
		return nil, err
	}

	return &DictionaryReader{kvReader: kvReader}, nil
}

func (reader *DictionaryReader) Get(term []byte) *TermInfo {
	value := reader.kvReader.Get(term)

	if value == nil {
		return nil
	}

	return &TermInfo{
		DocFreq:              binary.BigEndian.Uint32(value),
		PositionsStartOffset: binary.BigEndian.Uint64(value[4:]),
		PositionsEndOffset:   binary.BigEndian.Uint64(value[12:]),
	}
}

func (reader *DictionaryReader) Close() error {
	return reader.kvReader.Close()
}

package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
)

// KVStoreWriter writes an immutable sorted key-value file pair: a data
// file with length-prefixed entries and an index file with one fixed
// 8-byte offset per entry, which is what lets the reader binary search.
type KVStoreWriter struct {
	dataFile    *os.File
	dataWriter  *bufio.Writer
	indexFile   *os.File
	indexWriter *bufio.Writer
	offset      uint64
}

func newKVStoreWriter(basename string) (*KVStoreWriter, error) {
	dataFile, err := createFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	indexFile, err := createFile(basename + ".index")
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	return &KVStoreWriter{
		dataFile:    dataFile,
		dataWriter:  bufio.NewWriter(dataFile),
		indexFile:   indexFile,
		indexWriter: bufio.NewWriter(indexFile),
	}, nil
}

// Caller is responsible to check that keys are inserted in order
func (w *KVStoreWriter) Append(key, value []byte) error {
	keyLength := uint32(len(key))
	valueLength := uint32(len(value))

	buffer := make([]byte, 0, 8+keyLength+valueLength)
	buffer = binary.BigEndian.AppendUint32(buffer, keyLength)
	buffer = binary.BigEndian.AppendUint32(buffer, valueLength)
	buffer = append(buffer, key...)
	buffer = append(buffer, value...)

	if _, err := w.dataWriter.Write(buffer); err != nil {
		return err
	}

	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, w.offset)

	if _, err := w.indexWriter.Write(b); err != nil {
		return err
	}

	w.offset += uint64(len(buffer))

	return nil
}

func (w *KVStoreWriter) Close() error {
	if err := w.dataWriter.Flush(); err != nil {
		return err
	}

	if err := w.dataFile.Close(); err != nil {
		return err
	}

	if err := w.indexWriter.Flush(); err != nil {
		return err
	}

	return w.indexFile.Close()
}

type KVStoreReader struct {
	data      mmap.MMap
	dataFile  *os.File
	index     mmap.MMap
	indexFile *os.File
}

func newKVStoreReader(basename string) (*KVStoreReader, error) {
	dataFile, err := os.Open(basename + ".data")
	if err != nil {
		return nil, err
	}

	data, err := mapFile(dataFile)
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	indexFile, err := os.Open(basename + ".index")
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	index, err := mapFile(indexFile)
	if err != nil {
		_ = dataFile.Close()
		_ = indexFile.Close()
		return nil, err
	}

	return &KVStoreReader{
		data:      data,
		dataFile:  dataFile,
		index:     index,
		indexFile: indexFile,
	}, nil
}

// Get returns the value for key, or nil if key is absent. The returned
// slice aliases the mapped file and stays valid until Close.
func (kv *KVStoreReader) Get(key []byte) []byte {
	numItems := len(kv.index) / 8

	leftIndex := int64(0)
	rightIndex := int64(numItems) - 1

	for leftIndex <= rightIndex {
		index := leftIndex + ((rightIndex - leftIndex) / 2)

		offset := binary.BigEndian.Uint64(kv.index[index*8 : (index*8)+8])
		keyLength := binary.BigEndian.Uint32(kv.data[offset : offset+4])
		currentKey := kv.data[offset+8 : offset+8+uint64(keyLength)]

		switch bytes.Compare(currentKey, key) {
		case -1:
			// currentKey < key, go right
			leftIndex = index + 1
		case 0:
			valueLength := binary.BigEndian.Uint32(kv.data[offset+4 : offset+8])
			valueOffset := offset + 8 + uint64(keyLength)
			return kv.data[valueOffset : valueOffset+uint64(valueLength)]
		default:
			// currentKey > key, go left
			rightIndex = index - 1
		}
	}

	return nil
}

func (kv *KVStoreReader) Close() error {
	if kv.data != nil {
		if err := kv.data.Unmap(); err != nil {
			return err
		}
	}

	if err := kv.dataFile.Close(); err != nil {
		_ = kv.indexFile.Close()
		return err
	}

	if kv.index != nil {
		if err := kv.index.Unmap(); err != nil {
			return err
		}
	}

	return kv.indexFile.Close()
}

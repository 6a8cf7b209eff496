package index

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
)

func TestMaskedRegistryAlive(t *testing.T) {
	registry := NewMaskedRegistry(nil)
	assert.True(t, registry.Alive(0))
	assert.True(t, registry.Alive(42))

	masked := roaring.NewBitmap()
	masked.Add(42)

	registry = NewMaskedRegistry(masked)
	assert.True(t, registry.Alive(0))
	assert.False(t, registry.Alive(42))
}

func TestMaskedRoundTrip(t *testing.T) {
	directory := t.TempDir()

	maskedForSource7 := roaring.NewBitmap()
	maskedForSource7.AddMany([]uint32{1, 5, 9})

	maskedForSource2 := roaring.NewBitmap()
	maskedForSource2.Add(3)

	writer := newMaskedWriter(map[uint32]*roaring.Bitmap{
		7: maskedForSource7,
		2: maskedForSource2,
	})

	assert.NoError(t, writer.Write(directory, "0"))

	reader, err := newFileMaskedReader(directory, "0")
	assert.NoError(t, err)
	defer reader.Close()

	got, err := reader.GetMaskedDocIdsForSource(7)
	assert.NoError(t, err)
	assert.True(t, got.Equals(maskedForSource7))

	got, err = reader.GetMaskedDocIdsForSource(2)
	assert.NoError(t, err)
	assert.True(t, got.Equals(maskedForSource2))

	got, err = reader.GetMaskedDocIdsForSource(5)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestNullMaskedReader(t *testing.T) {
	reader := newNullMaskedReader()

	got, err := reader.GetMaskedDocIdsForSource(1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

package index

type FieldType int

// DocumentId is local to one source. Callers that need to blend results
// across sources pair it with the source index.
type DocumentId uint32

const (
	TextFieldType FieldType = iota
	ByteFieldType
)

type Field struct {
	FieldType FieldType
	Name      string
	Value     []byte
}

type Document []Field

package index

import (
	"unicode"
	"unicode/utf8"
)

type Token struct {
	Text []byte
}

type StandardTokenizer struct {
	input       []byte
	inputIndex  int
	token       *Token
	tokenBuffer []byte
}

func NewStandardTokenizer() *StandardTokenizer {
	return &StandardTokenizer{
		token:       &Token{},
		tokenBuffer: make([]byte, 0, 100),
	}
}

func (t *StandardTokenizer) Reset(input []byte) {
	t.input = input
	t.inputIndex = 0
}

// Token is valid until the next call to NextToken
func (t *StandardTokenizer) NextToken() (*Token, bool) {
	t.tokenBuffer = t.tokenBuffer[:0]

	for t.inputIndex < len(t.input) {
		r, size := utf8.DecodeRune(t.input[t.inputIndex:])
		t.inputIndex += size

		// TODO: apply proper normalization
		normalizedRune := unicode.ToLower(r)

		if unicode.IsSpace(normalizedRune) || unicode.IsPunct(normalizedRune) {
			if len(t.tokenBuffer) > 0 {
				t.token.Text = t.tokenBuffer
				return t.token, true
			}

			continue
		}

		t.tokenBuffer = utf8.AppendRune(t.tokenBuffer, normalizedRune)
	}

	if len(t.tokenBuffer) > 0 {
		t.token.Text = t.tokenBuffer
		return t.token, true
	}

	return nil, false
}

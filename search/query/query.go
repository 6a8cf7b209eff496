package query

import (
	"bytes"
	"fmt"

	"github.com/caracal-search/caracal/search/index"
)

type Term struct {
	Id   TermId
	Text []byte
}

// Query is the compiled form the executor runs: the distinct terms to
// scan, each with a dense id, plus the registered phrases. Read-only
// during execution, so one query can drive many sources concurrently.
type Query struct {
	terms   []Term
	phrases [][]TermId
}

func NewQuery() *Query {
	return &Query{
		terms: make([]Term, 0, 10),
	}
}

// RegisterTerm returns the id of term, assigning the next one if it
// was not registered yet.
func (q *Query) RegisterTerm(text []byte) TermId {
	for _, term := range q.terms {
		if bytes.Equal(term.Text, text) {
			return term.Id
		}
	}

	id := TermId(len(q.terms) + 1)
	q.terms = append(q.terms, Term{Id: id, Text: text})

	return id
}

// RegisterPhrase registers the terms of a phrase in order and records
// that they must occur at consecutive positions.
func (q *Query) RegisterPhrase(texts ...[]byte) ([]TermId, error) {
	if len(texts) == 0 || len(texts) > index.MaxPhraseSize {
		return nil, fmt.Errorf("phrase size must be in [1, %d], got %d", index.MaxPhraseSize, len(texts))
	}

	ids := make([]TermId, len(texts))
	for i, text := range texts {
		ids[i] = q.RegisterTerm(text)
	}

	q.phrases = append(q.phrases, ids)

	return ids, nil
}

func (q *Query) Terms() []Term {
	return q.terms
}

func (q *Query) Phrases() [][]TermId {
	return q.phrases
}

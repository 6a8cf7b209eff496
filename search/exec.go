package search

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/caracal-search/caracal/search/index"
	"github.com/caracal-search/caracal/search/query"
)

type termIterator struct {
	id query.TermId
	it index.PostingsIterator
}

// ExecQuery evaluates q against one source: it walks the postings of
// every query term document-at-a-time, skips documents the registry
// reports masked and documents docFilter rejects, materializes the hit
// positions of each remaining candidate into a position space, and
// hands the candidate to matchFilter. Results are whatever matchFilter
// accumulated; ExecQuery has no other output.
//
// registry and docFilter may be nil. q and source are never mutated, so
// concurrent executions of the same query on different sources need no
// coordination.
func ExecQuery(q *query.Query, source index.Source, registry *index.MaskedRegistry, matchFilter query.MatchedDocumentsFilter, docFilter query.DocumentFilter) error {
	iterators := make([]termIterator, 0, len(q.Terms()))

	for _, term := range q.Terms() {
		it, err := source.TermPostings(term.Text)
		if err != nil {
			return fmt.Errorf("source %d, term %q: %w", source.Id(), term.Text, err)
		}

		if it == nil {
			continue
		}

		if !it.Next(0) {
			if err := it.Err(); err != nil {
				return fmt.Errorf("source %d, term %q: %w", source.Id(), term.Text, err)
			}

			continue
		}

		iterators = append(iterators, termIterator{id: term.Id, it: it})
	}

	positions, err := query.NewPositionSpace(index.MaxPosition)
	if err != nil {
		return err
	}

	matched := make([]query.MatchedTerm, 0, len(iterators))

	for len(iterators) > 0 {
		// Smallest current doc id across the term iterators is the
		// next candidate
		docId := iterators[0].it.DocId()
		for _, ti := range iterators[1:] {
			if id := ti.it.DocId(); id < docId {
				docId = id
			}
		}

		considered := (registry == nil || registry.Alive(docId)) && (docFilter == nil || docFilter.Accept(docId))

		if considered {
			positions.Reset()
			matched = matched[:0]

			for i := range iterators {
				ti := &iterators[i]
				if ti.it.DocId() != docId {
					continue
				}

				hits := ti.it.Positions()
				for _, pos := range hits {
					if pos == 0 || pos > index.MaxPosition {
						return fmt.Errorf("source %d, document %d: hit position %d out of range: %w",
							source.Id(), docId, pos, index.ErrCorruptPostings)
					}

					positions.Set(ti.id, pos)
				}

				matched = append(matched, query.MatchedTerm{Id: ti.id, Hits: hits})
			}

			matchFilter.Consider(&query.Candidate{
				DocId:     docId,
				Terms:     matched,
				Positions: positions,
			})
		}

		// Advance every iterator sitting on the candidate, dropping
		// the exhausted ones
		for i := 0; i < len(iterators); {
			ti := &iterators[i]

			if ti.it.DocId() == docId && !ti.it.Next(docId+1) {
				if err := ti.it.Err(); err != nil {
					return fmt.Errorf("source %d, document %d: %w", source.Id(), docId, err)
				}

				iterators = append(iterators[:i], iterators[i+1:]...)
				continue
			}

			i++
		}
	}

	return nil
}

// ExecQueryAll runs q against every source of the collection in order,
// constructing a fresh filter per source via newFilter. The returned
// slice is in source-index order. Callers are expected to merge or
// blend the per-source filters themselves.
func ExecQueryAll[F query.MatchedDocumentsFilter](q *query.Query, collection *index.SourcesCollection, docFilter query.DocumentFilter, newFilter func() F) ([]F, error) {
	out := make([]F, 0, collection.Len())

	for i := 0; i < collection.Len(); i++ {
		filter := newFilter()

		if err := ExecQuery(q, collection.Source(i), collection.ScannerRegistryFor(i), filter, docFilter); err != nil {
			return nil, err
		}

		out = append(out, filter)
	}

	return out, nil
}

// ExecQueryPar is ExecQueryAll with one goroutine per source. Sources
// are isolated, so the tasks share nothing mutable; each writes its
// filter into its own slot, which keeps the output in source-index
// order exactly like the sequential variant. On failure every task is
// still joined before the first error is returned.
func ExecQueryPar[F query.MatchedDocumentsFilter](q *query.Query, collection *index.SourcesCollection, docFilter query.DocumentFilter, newFilter func() F) ([]F, error) {
	n := collection.Len()
	out := make([]F, n)

	if n == 0 {
		return out, nil
	}

	if n == 1 {
		filter := newFilter()

		if err := ExecQuery(q, collection.Source(0), collection.ScannerRegistryFor(0), filter, docFilter); err != nil {
			return nil, err
		}

		out[0] = filter
		return out, nil
	}

	var group errgroup.Group

	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			filter := newFilter()

			if err := ExecQuery(q, collection.Source(i), collection.ScannerRegistryFor(i), filter, docFilter); err != nil {
				return err
			}

			out[i] = filter
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

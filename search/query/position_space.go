package query

import (
	"fmt"
	"math"

	"github.com/caracal-search/caracal/search/index"
)

// TermId identifies a term within one compiled query, not in the index
// dictionary. Ids are dense, assigned by Query starting at 1; 0 is
// never assigned so a zeroed slot can never alias a real term.
type TermId uint16

// A slot is 4 bytes per position. Set and test need both fields on
// every access, so packing them together beats two parallel arrays.
type positionSlot struct {
	gen  uint16
	term TermId
}

// PositionSpace maps each token position of the document currently
// being scanned to the query term occupying it. One instance is owned
// by one execution and reused across every document it scans; Reset
// switches documents in O(1) by advancing a generation counter, so a
// slot written under an older generation is stale and reads as unset.
type PositionSpace struct {
	// maxPos + 1 + MaxPhraseSize slots. The trailing MaxPhraseSize
	// slots are never written, so TestPhrase can probe past the last
	// real position without branching on the offset.
	slots  []positionSlot
	maxPos uint32
	gen    uint16
}

func NewPositionSpace(maxPos uint32) (*PositionSpace, error) {
	if maxPos == 0 || maxPos > index.MaxPosition {
		return nil, fmt.Errorf("max position must be in [1, %d], got %d", index.MaxPosition, maxPos)
	}

	return &PositionSpace{
		slots:  make([]positionSlot, maxPos+1+index.MaxPhraseSize),
		maxPos: maxPos,
		gen:    1, // 0 means unset
	}, nil
}

// Reset forgets every position of the current document. Amortized
// O(1): a real clear happens only once every 65534 documents, when the
// generation counter wraps. The guard region stays zero and is skipped.
func (s *PositionSpace) Reset() {
	if s.gen == math.MaxUint16 {
		clear(s.slots[:s.maxPos+1])
		s.gen = 1
		return
	}

	s.gen++
}

// Set records term at pos. pos must be in (0, maxPos]; the executor
// validates hit positions before calling, so no check is paid here.
func (s *PositionSpace) Set(term TermId, pos uint32) {
	s.slots[pos] = positionSlot{gen: s.gen, term: term}
}

func (s *PositionSpace) Test(term TermId, pos uint32) bool {
	return s.slots[pos].gen == s.gen && s.slots[pos].term == term
}

// Unset clears pos for the current document. Lets a match filter
// consume positions while tracking multi-term sequences.
func (s *PositionSpace) Unset(pos uint32) {
	s.slots[pos].gen = 0
}

// TestPhrase reports whether the terms occupy consecutive positions
// starting at one of the candidate offsets of the first term. terms
// must not exceed MaxPhraseSize and the offsets must come from Set
// calls, which bounds every probe inside the guard region.
//
// Reference implementation; iterating the hits of the least frequent
// phrase term and testing adjacency would visit fewer slots.
func (s *PositionSpace) TestPhrase(terms []TermId, firstTokenPositions []uint32) bool {
	for _, pos := range firstTokenPositions {
		if !s.Test(terms[0], pos) {
			continue
		}

		match := true
		for k := 1; k < len(terms); k++ {
			if !s.Test(terms[k], pos+uint32(k)) {
				match = false
				break
			}
		}

		if match {
			return true
		}
	}

	return false
}

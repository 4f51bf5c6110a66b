package actor

import (
	"reflect"

	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

// Mapping records, for each non-wildcard-many slot of a Pattern in
// declaration order, the index into the payload Tuple it bound to. A
// SlotAny/SlotTyped/SlotTypedValue slot always contributes exactly one
// entry; SlotMany contributes none (it binds a range, not an index).
type Mapping []int

// Match reports whether tup matches p and, on success, the slot->index
// mapping. It dispatches to one of the five wildcard-topology strategies of
// the design Value predicates (SlotTypedValue) are only evaluated once the
// type-level shape already matches.
func Match(p *Pattern, tup *Tuple) (Mapping, bool) {
	return match(p, tup, true)
}

// MatchShape is Match with value predicates skipped: it answers "could a
// payload of this type shape ever match p", independent of the particular
// values carried. The per-behavior match cache (matchcache.go) uses this to
// prefilter candidate clauses per type token without baking a single
// message's values into the cached decision.
func MatchShape(p *Pattern, tup *Tuple) bool {
	_, ok := match(p, tup, false)
	return ok
}

func match(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	switch p.topology {
	case topologyNone:
		return matchNone(p, tup, checkValues)
	case topologyTrailing:
		return matchTrailing(p, tup, checkValues)
	case topologyLeading:
		return matchLeading(p, tup, checkValues)
	case topologyInBetween:
		return matchInBetween(p, tup, checkValues)
	case topologyMultiple:
		return matchMultiple(p, tup, checkValues)
	}
	return nil, false
}

func slotTypeMatches(reg *registry.Registry, s Slot, tup *Tuple, idx int) bool {
	if s.Kind == SlotAny {
		return true
	}
	want := reg.IDOf(s.Type)
	return tup.ElementType(idx) == want
}

func slotValueMatches(s Slot, v any) bool {
	if s.Kind != SlotTypedValue {
		return true
	}
	if s.Equal != nil {
		return s.Equal(v, s.Value)
	}
	return reflect.DeepEqual(v, s.Value)
}

// matchNone implements the "none" row: token comparison when both sides are
// statically typed, otherwise element-by-element type equality on all k
// slots.
func matchNone(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	if tup.Size() != len(p.slots) {
		return nil, false
	}
	if ids, ok := p.staticTypeIDs(); ok {
		if tok, isStatic := tup.TypeToken(); isStatic {
			if tok != p.reg.TokenOf(ids) {
				return nil, false
			}
			return finishMapping(p, tup, identityMapping(len(p.slots)), checkValues)
		}
	}
	for i, s := range p.slots {
		if !slotTypeMatches(p.reg, s, tup, i) {
			return nil, false
		}
	}
	return finishMapping(p, tup, identityMapping(len(p.slots)), checkValues)
}

// matchTrailing implements the "trailing variadic" row: compare the first k
// slots; the Rest absorbs everything from index k onward.
func matchTrailing(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	k := p.k
	if tup.Size() < k {
		return nil, false
	}
	for i := 0; i < k; i++ {
		if !slotTypeMatches(p.reg, p.slots[i], tup, i) {
			return nil, false
		}
	}
	return finishMapping(p, tup, identityMapping(k), checkValues)
}

// matchLeading implements the "leading variadic" row: compare the last k
// slots against the last k tuple elements; mapping offsets start at
// size-k.
func matchLeading(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	k := p.k
	size := tup.Size()
	if size < k {
		return nil, false
	}
	offset := size - k
	// p.slots[0] is the SlotMany; the remaining k slots follow it.
	for i := 0; i < k; i++ {
		if !slotTypeMatches(p.reg, p.slots[i+1], tup, offset+i) {
			return nil, false
		}
	}
	mv := make(Mapping, k)
	for i := range mv {
		mv[i] = offset + i
	}
	return finishMappingWithIndex(p, tup, mv, trailingPatternIndices(p), checkValues)
}

// matchInBetween implements the "in-between" row: compare a prefix before
// the wildcard and a suffix after it, independently.
func matchInBetween(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	wcPos := p.manyPositions[0]
	prefixLen := wcPos
	suffixLen := len(p.slots) - wcPos - 1
	size := tup.Size()
	if size < prefixLen+suffixLen {
		return nil, false
	}
	for i := 0; i < prefixLen; i++ {
		if !slotTypeMatches(p.reg, p.slots[i], tup, i) {
			return nil, false
		}
	}
	suffixStart := size - suffixLen
	for i := 0; i < suffixLen; i++ {
		if !slotTypeMatches(p.reg, p.slots[wcPos+1+i], tup, suffixStart+i) {
			return nil, false
		}
	}
	mv := make(Mapping, 0, prefixLen+suffixLen)
	for i := 0; i < prefixLen; i++ {
		mv = append(mv, i)
	}
	for i := 0; i < suffixLen; i++ {
		mv = append(mv, suffixStart+i)
	}
	idx := make([]int, 0, prefixLen+suffixLen)
	for i := 0; i < prefixLen; i++ {
		idx = append(idx, i)
	}
	for i := 0; i < suffixLen; i++ {
		idx = append(idx, wcPos+1+i)
	}
	return finishMappingWithIndex(p, tup, mv, idx, checkValues)
}

// matchMultiple implements the greedy submatch with commit/rollback CAF
// uses for two-wildcard patterns (detail/matches.hpp, matcher<multiple,...>).
func matchMultiple(p *Pattern, tup *Tuple, checkValues bool) (Mapping, bool) {
	minLen := len(p.slots) - len(p.manyPositions)
	if tup.Size() < minLen {
		return nil, false
	}
	var mv Mapping
	var patIdx []int
	ok := greedyMatch(p, tup, 0, 0, &mv, &patIdx)
	if !ok {
		return nil, false
	}
	return finishMappingWithIndex(p, tup, mv, patIdx, checkValues)
}

// greedyMatch walks the pattern slots and tuple elements in lockstep,
// treating a SlotMany as "advance past it, then backtrack over how many
// tuple elements it swallows until the remainder matches" — the same
// commit/rollback shape as CAF's matcher<multiple,...>::match.
func greedyMatch(p *Pattern, tup *Tuple, si, ti int, mv *Mapping, patIdx *[]int) bool {
	for si < len(p.slots) {
		s := p.slots[si]
		if s.Kind == SlotMany {
			si++
			if si == len(p.slots) {
				return true // trailing wildcard: absorbs the remainder
			}
			commitLen := len(*mv)
			for ; ti <= tup.Size(); ti++ {
				if greedyMatch(p, tup, si, ti, mv, patIdx) {
					return true
				}
				*mv = (*mv)[:commitLen]
				*patIdx = (*patIdx)[:commitLen]
			}
			return false
		}
		if ti >= tup.Size() {
			return false
		}
		if !slotTypeMatches(p.reg, s, tup, ti) {
			return false
		}
		*mv = append(*mv, ti)
		*patIdx = append(*patIdx, si)
		si++
		ti++
	}
	return ti == tup.Size()
}

func identityMapping(n int) Mapping {
	mv := make(Mapping, n)
	for i := range mv {
		mv[i] = i
	}
	return mv
}

// trailingPatternIndices returns, for matchLeading, the pattern-slot index
// (skipping the leading SlotMany at 0) each mapping entry corresponds to.
func trailingPatternIndices(p *Pattern) []int {
	idx := make([]int, p.k)
	for i := range idx {
		idx[i] = i + 1
	}
	return idx
}

// finishMapping evaluates value predicates for the "all slots in order"
// case (none/trailing strategies, where pattern-slot index == mv index).
func finishMapping(p *Pattern, tup *Tuple, mv Mapping, checkValues bool) (Mapping, bool) {
	if !checkValues {
		return mv, true
	}
	for i, payloadIdx := range mv {
		if !slotValueMatches(p.slots[i], tup.ElementAt(payloadIdx)) {
			return nil, false
		}
	}
	return mv, true
}

// finishMappingWithIndex evaluates value predicates when the pattern-slot
// index for mv[i] is patIdx[i] rather than i itself (leading/in-between/
// multiple strategies).
func finishMappingWithIndex(p *Pattern, tup *Tuple, mv Mapping, patIdx []int, checkValues bool) (Mapping, bool) {
	if !checkValues {
		return mv, true
	}
	for i, payloadIdx := range mv {
		if !slotValueMatches(p.slots[patIdx[i]], tup.ElementAt(payloadIdx)) {
			return nil, false
		}
	}
	return mv, true
}

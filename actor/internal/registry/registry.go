// Package registry is the process-wide (but not ambient-singleton) type-id
// registry backing Tuple type tokens. Spec §9 turns the source's global
// type-id registry into an explicit context handle owned by a Runtime
// instead of package-level mutable state; callers construct one Registry per
// Runtime via New and pass it down to Tuple construction.
package registry

import (
	"encoding/binary"
	"hash/fnv"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// TypeID is a compact integer fingerprint of a single Go type, assigned in
// first-registration order. It is the target-language analogue of CAF's
// uniform_type_info id.
type TypeID uint32

// Token is the 64-bit fingerprint of an ordered TypeID sequence, used to key
// the per-behavior match cache and to short-circuit the
// none-wildcard matcher strategy for statically typed payloads.
type Token uint64

// Registry assigns stable TypeIDs to reflect.Types and caches the decoded
// TypeID list for any Token it has produced, so that Token -> []TypeID is a
// cheap lookup rather than a re-hash (spec L1: round-tripping a token must
// yield the original type-id sequence).
//
// The id-assignment map is protected by a mutex because registration can
// race across actors in different goroutines; the decode cache is a bounded
// LRU (hashicorp/golang-lru/v2) because a system with many distinct ad hoc
// dynamically typed payload shapes should not grow this cache without bound.
type Registry struct {
	mu sync.Mutex
	ids map[reflect.Type]TypeID
	types []reflect.Type // index by TypeID
	decoded *lru.Cache[Token, []TypeID]
}

// New returns a Registry whose decode cache holds up to capacity entries.
// A capacity of 0 uses a reasonable default.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = 4096
	}
	c, err := lru.New[Token, []TypeID](capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, which we've excluded.
		panic(err)
	}
	return &Registry{
		ids: make(map[reflect.Type]TypeID),
		decoded: c,
	}
}

// IDOf returns the TypeID for t, registering it if this is the first time
// the registry has seen it.
func (r *Registry) IDOf(t reflect.Type) TypeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[t]; ok {
		return id
	}
	id := TypeID(len(r.types))
	r.ids[t] = id
	r.types = append(r.types, t)
	return id
}

// TypeOf resolves a previously assigned TypeID back to its reflect.Type.
// ok is false if id was never registered on this Registry.
func (r *Registry) TypeOf(id TypeID) (reflect.Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) < 0 || int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// TokenOf computes the Token for an ordered TypeID sequence and primes the
// decode cache so Decode(TokenOf(ids)) == ids without rehashing.
func (r *Registry) TokenOf(ids []TypeID) Token {
	tok := hashIDs(ids)
	cp := make([]TypeID, len(ids))
	copy(cp, ids)
	r.decoded.Add(tok, cp)
	return tok
}

// Decode returns the TypeID sequence a Token was computed from, if this
// Registry produced that token (or it survived in the decode cache).
func (r *Registry) Decode(tok Token) ([]TypeID, bool) {
	return r.decoded.Get(tok)
}

func hashIDs(ids []TypeID) Token {
	h := fnv.New64a()
	var buf [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		_, _ = h.Write(buf[:])
	}
	return Token(h.Sum64())
}

package actor

import (
	"sort"

	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

// matchCacheEntry is one row of the per-behavior match cache :
// for a given payload type token, the clause indices (in declaration order)
// whose pattern could possibly match any payload of that type shape.
type matchCacheEntry struct {
	token registry.Token
	clauses []int
}

// matchCache is a sorted flat container keyed by type token, giving O(log c)
// lookup and bounded-cost insertion — the spec's explicit alternative to a
// hash map, chosen (as in the source) to keep the common case
// cache-friendly for the handful of distinct shapes a typical behavior
// actually sees.
type matchCache struct {
	entries []matchCacheEntry
}

func newMatchCache() *matchCache {
	return &matchCache{}
}

func (c *matchCache) find(tok registry.Token) (int, bool) {
	i := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].token >= tok })
	if i < len(c.entries) && c.entries[i].token == tok {
		return i, true
	}
	return i, false
}

// lookup returns the cached candidate clause list for tok, if present.
func (c *matchCache) lookup(tok registry.Token) ([]int, bool) {
	i, ok := c.find(tok)
	if !ok {
		return nil, false
	}
	return c.entries[i].clauses, true
}

// insert records the candidate clause list for tok, keeping entries sorted.
func (c *matchCache) insert(tok registry.Token, clauses []int) {
	i, ok := c.find(tok)
	if ok {
		c.entries[i].clauses = clauses
		return
	}
	c.entries = append(c.entries, matchCacheEntry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = matchCacheEntry{token: tok, clauses: clauses}
}

// candidates returns the clause indices of b worth evaluating against tup,
// building and caching the entry on first sight of tup's type token. A
// dynamically typed tup has no stable token and always evaluates every
// clause.
func (b *Behavior) candidates(tup *Tuple) []int {
	tok, static := tup.TypeToken()
	if !static {
		all := make([]int, len(b.clauses))
		for i := range all {
			all[i] = i
		}
		return all
	}
	if cached, ok := b.cache.lookup(tok); ok {
		return cached
	}
	var candidates []int
	for i, cl := range b.clauses {
		if MatchShape(cl.Pattern, tup) {
			candidates = append(candidates, i)
		}
	}
	b.cache.insert(tok, candidates)
	return candidates
}

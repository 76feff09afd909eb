package model

import (
	"sync"

	"github.com/Nioron07/Easy-Acumatica/schema"
)

// Cache holds synthesized type sets keyed by schema fingerprint. Entries
// live for the process lifetime; the set of distinct schema versions one
// process sees is small, so nothing is ever evicted.
//
// Concurrent synthesis of the same fingerprint is harmless: the results are
// structurally identical, so last-writer-wins is acceptable.
type Cache struct {
	mu   sync.RWMutex
	sets map[string]*TypeSet
}

// NewCache returns an empty type-set cache.
func NewCache() *Cache {
	return &Cache{sets: make(map[string]*TypeSet)}
}

// Get returns the cached type set for a fingerprint.
func (c *Cache) Get(fingerprint string) (*TypeSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sets[fingerprint]
	return s, ok
}

// Put stores a type set under a fingerprint, replacing any previous entry.
func (c *Cache) Put(fingerprint string, s *TypeSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[fingerprint] = s
}

// Len returns the number of cached fingerprints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

// defaultCache is the process-wide cache used by SynthesizeCached.
var defaultCache = NewCache()

// SynthesizeCached synthesizes the snapshot's type set, reusing the
// process-wide cache entry for its fingerprint when one exists.
func SynthesizeCached(m *schema.Model) (*TypeSet, error) {
	fp := schema.Fingerprint(m)
	if s, ok := defaultCache.Get(fp); ok {
		return s, nil
	}
	s, err := Synthesize(m)
	if err != nil {
		return nil, err
	}
	defaultCache.Put(fp, s)
	return s, nil
}

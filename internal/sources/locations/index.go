package locations

import (
	"strings"
	"sync"
	"time"
)

// Index is the in-memory view of known embassy posts, safe for concurrent
// reads while a reload swaps the contents.
//
// An empty index (no file configured, or not yet loaded) resolves everything
// verbatim: validation is an assist, never a gate the operator did not ask
// for.
type Index struct {
	mu         sync.RWMutex
	entries    []Entry
	lastReload time.Time
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Update replaces the full entry list.
func (idx *Index) Update(entries []Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = entries
	idx.lastReload = time.Now()
}

// Count returns the number of known posts.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// LastReload returns when the index was last updated.
func (idx *Index) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastReload
}

// Resolve maps a client-supplied location to the canonical post name.
// Matching is case-insensitive: exact name, then alias, then name substring.
// Returns false only when the index is populated and nothing matches.
func (idx *Index) Resolve(input string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 {
		return input, true
	}

	wanted := strings.ToUpper(strings.TrimSpace(input))
	for _, e := range idx.entries {
		if strings.ToUpper(e.Name) == wanted {
			return e.Name, true
		}
	}
	for _, e := range idx.entries {
		for _, alias := range e.Aliases {
			if strings.ToUpper(alias) == wanted {
				return e.Name, true
			}
		}
	}
	for _, e := range idx.entries {
		if strings.Contains(strings.ToUpper(e.Name), wanted) {
			return e.Name, true
		}
	}
	return "", false
}

package income

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/credlens/credlens/internal/model"
)

// Cache memoizes reconciliation results for identical candidate sets. It is
// caller-owned: construct one, pass it where repeated reconciliation is
// expected, and let it go out of scope with the caller. Nothing in this
// package holds a cache globally. A Cache is safe for concurrent use.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	expiresAt time.Time
	income    model.ReconciledIncome
	warnings  []string
}

// NewCache creates a reconciliation cache with a bounded TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Reconcile returns the cached result for the candidate set if fresh,
// otherwise computes and stores it. Expired entries are swept on every
// insert, so the map stays bounded by the live candidate sets.
func (c *Cache) Reconcile(r *Reconciler, candidates map[model.IncomeSource]model.IncomeCandidate) (model.ReconciledIncome, []string) {
	key := cacheKey(candidates)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expiresAt) {
		return entry.income, copyWarnings(entry.warnings)
	}

	income, warnings := r.Reconcile(candidates)

	for k, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{
		expiresAt: now.Add(c.ttl),
		income:    income,
		warnings:  warnings,
	}
	return income, copyWarnings(warnings)
}

// copyWarnings hands each caller its own slice; callers append to the result.
func copyWarnings(warnings []string) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	copy(out, warnings)
	return out
}

// cacheKey builds a deterministic key from the candidate set, ordered by
// source trust rank.
func cacheKey(candidates map[model.IncomeSource]model.IncomeCandidate) string {
	sources := make([]model.IncomeSource, 0, len(candidates))
	for s := range candidates {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].TrustPriority() < sources[j].TrustPriority()
	})

	key := ""
	for _, s := range sources {
		c := candidates[s]
		key += fmt.Sprintf("%s:%.2f:%.2f;", s, c.Gross, c.Net)
	}
	return key
}

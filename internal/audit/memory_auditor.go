package audit

import (
	"sync"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

// DefaultMemoryCapacity is the number of entries an InMemoryAuditor keeps by default.
const DefaultMemoryCapacity = 1000

var (
	_ core.Auditor     = (*InMemoryAuditor)(nil)
	_ core.AuditReader = (*InMemoryAuditor)(nil)
)

// InMemoryAuditor is an auditor that keeps the most recent audit entries in memory.
type InMemoryAuditor struct {
	mu       sync.Mutex
	capacity int
	entries  []core.AuditEntry
}

// NewInMemoryAuditor returns an auditor retaining at most capacity entries.
// Non-positive capacities use DefaultMemoryCapacity.
func NewInMemoryAuditor(capacity int) *InMemoryAuditor {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &InMemoryAuditor{
		capacity: capacity,
		entries:  make([]core.AuditEntry, 0),
	}
}

func (i *InMemoryAuditor) Log(entry core.AuditEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.entries) >= i.capacity {
		// drop the oldest entry
		copy(i.entries, i.entries[1:])
		i.entries = i.entries[:len(i.entries)-1]
	}
	i.entries = append(i.entries, entry)
	return nil
}

// GetRecent returns up to limit of the newest entries, oldest first.
func (i *InMemoryAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if limit < 0 || limit > len(i.entries) {
		limit = len(i.entries)
	}
	start := len(i.entries) - limit
	entries := make([]core.AuditEntry, limit)
	copy(entries, i.entries[start:])

	return entries, nil
}

// Find returns up to limit of the newest entries matching filter, oldest first.
func (i *InMemoryAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var matches []core.AuditEntry
	for _, entry := range i.entries {
		if filter(entry) {
			matches = append(matches, entry)
		}
	}

	if limit >= 0 && len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}

	return matches, nil
}

func (i *InMemoryAuditor) Close() error {
	return nil // nothing to close :)
}

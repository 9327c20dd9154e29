package consumer

import (
	stdsync "sync"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// FilterOptions feeds the log-page category filters: flat, sorted option
// lists recomputed on every taxonomy change.
type FilterOptions struct {
	source TreeSource

	mu    stdsync.Mutex
	tree  domain.TaxonomyTree
	unsub func()
}

// NewFilterOptions subscribes to the source.
func NewFilterOptions(source TreeSource) *FilterOptions {
	f := &FilterOptions{source: source, tree: source.Snapshot()}
	f.unsub = source.Subscribe(func(domain.TaxonomyTree) {
		fresh := source.Snapshot()
		f.mu.Lock()
		f.tree = fresh
		f.mu.Unlock()
	})
	return f
}

// Close unsubscribes from the source.
func (f *FilterOptions) Close() {
	if f.unsub != nil {
		f.unsub()
		f.unsub = nil
	}
}

// Types lists all Type options.
func (f *FilterOptions) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree.TypeNames()
}

// Groups lists Group options for one Type.
func (f *FilterOptions) Groups(typeName string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree.GroupNames(typeName)
}

// Statuses lists the canonical status filter options.
func (f *FilterOptions) Statuses() []string {
	out := make([]string, 0, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		out = append(out, string(status))
	}
	return out
}

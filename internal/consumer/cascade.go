package consumer

import (
	stdsync "sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// TreeSource is the slice of the taxonomy store a consumer reads from.
type TreeSource interface {
	Snapshot() domain.TaxonomyTree
	Subscribe(listener func(domain.TaxonomyTree)) func()
}

// Selection is one (Type, Group, Subgroup) pick in a cascading dropdown.
// Empty components mean nothing is selected at that level.
type Selection struct {
	Type     string
	Group    string
	Subgroup string
}

// CascadeSelector models the cascading dropdowns used by ticket forms and
// log filters: it tracks one selection and keeps it valid as the tree
// changes underneath it. Renames are followed when exactly one new key
// appears with the old key's children; deletes clear the affected levels.
type CascadeSelector struct {
	source TreeSource
	logger *zap.Logger

	mu        stdsync.Mutex
	tree      domain.TaxonomyTree
	selection Selection
	unsub     func()
}

// NewCascadeSelector subscribes to the source and starts with an empty
// selection.
func NewCascadeSelector(source TreeSource, logger *zap.Logger) *CascadeSelector {
	c := &CascadeSelector{
		source: source,
		logger: logger,
		tree:   source.Snapshot(),
	}
	c.unsub = source.Subscribe(c.onTreeChanged)
	return c
}

// Close unsubscribes from the source. Must be called on teardown so the
// selector is never notified after disposal.
func (c *CascadeSelector) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}

// Selection returns the current pick.
func (c *CascadeSelector) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// TypeOptions lists selectable Types.
func (c *CascadeSelector) TypeOptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.TypeNames()
}

// GroupOptions lists Groups under the selected Type.
func (c *CascadeSelector) GroupOptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.GroupNames(c.selection.Type)
}

// SubgroupOptions lists Subgroups under the selected (Type, Group).
func (c *CascadeSelector) SubgroupOptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree.Subgroups(c.selection.Type, c.selection.Group)
}

// SelectType picks a Type and clears the lower levels.
func (c *CascadeSelector) SelectType(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = Selection{Type: name}
}

// SelectGroup picks a Group under the current Type.
func (c *CascadeSelector) SelectGroup(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Group = name
	c.selection.Subgroup = ""
}

// SelectSubgroup picks a Subgroup under the current Group.
func (c *CascadeSelector) SelectSubgroup(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Subgroup = name
}

// onTreeChanged re-reads the authoritative snapshot rather than trusting the
// event payload, so a selector mounted after earlier mutations still
// converges, then revalidates the selection against the fresh tree.
func (c *CascadeSelector) onTreeChanged(domain.TaxonomyTree) {
	fresh := c.source.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.tree
	c.tree = fresh

	if c.selection.Type == "" {
		return
	}

	if _, ok := fresh[c.selection.Type]; !ok {
		if renamed, ok := findRenamedKey(typeKeys(previous), typeKeys(fresh)); ok {
			c.logger.Debug("selection followed type rename",
				zap.String("from", c.selection.Type), zap.String("to", renamed))
			c.selection.Type = renamed
		} else {
			c.selection = Selection{}
			return
		}
	}

	if c.selection.Group == "" {
		return
	}
	groups := fresh[c.selection.Type]
	if _, ok := groups[c.selection.Group]; !ok {
		if renamed, ok := findRenamedKey(groupKeys(previous, c.selection.Type), groupKeysOf(groups)); ok {
			c.selection.Group = renamed
		} else {
			c.selection.Group = ""
			c.selection.Subgroup = ""
			return
		}
	}

	if c.selection.Subgroup == "" {
		return
	}
	for _, name := range groups[c.selection.Group] {
		if name == c.selection.Subgroup {
			return
		}
	}
	c.selection.Subgroup = ""
}

// findRenamedKey reports the single key present after but not before, which
// is what a rename looks like when the old key vanished.
func findRenamedKey(before, after map[string]struct{}) (string, bool) {
	var added string
	count := 0
	for key := range after {
		if _, existed := before[key]; !existed {
			added = key
			count++
		}
	}
	if count == 1 {
		return added, true
	}
	return "", false
}

func typeKeys(tree domain.TaxonomyTree) map[string]struct{} {
	keys := make(map[string]struct{}, len(tree))
	for name := range tree {
		keys[name] = struct{}{}
	}
	return keys
}

func groupKeys(tree domain.TaxonomyTree, typeName string) map[string]struct{} {
	return groupKeysOf(tree[typeName])
}

func groupKeysOf(groups map[string][]string) map[string]struct{} {
	keys := make(map[string]struct{}, len(groups))
	for name := range groups {
		keys[name] = struct{}{}
	}
	return keys
}

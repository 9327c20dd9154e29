package taxonomy

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/events"
	"github.com/spec-kit/ticket-sync/internal/kv"
	"github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// Mirror is the backend surface the store copies the tree to after each
// mutation. The durable store stays authoritative; mirror failures are
// logged, never surfaced.
type Mirror interface {
	SaveTaxonomy(ctx context.Context, tree domain.TaxonomyTree) error
}

// Store owns the Type to Group to Subgroup tree. Every mutation validates,
// persists the whole tree, and then broadcasts the new snapshot on the bus,
// so the tree is never observable partially mutated.
type Store struct {
	store      kv.Store
	dispatcher events.Dispatcher
	mirror     Mirror
	logger     *zap.Logger

	mu   stdsync.Mutex
	tree domain.TaxonomyTree
}

// NewStore loads the tree from the durable store, falling back to the
// built-in default when the key is absent or unreadable.
func NewStore(ctx context.Context, store kv.Store, dispatcher events.Dispatcher, mirror Mirror, logger *zap.Logger) *Store {
	s := &Store{
		store:      store,
		dispatcher: dispatcher,
		mirror:     mirror,
		logger:     logger,
		tree:       domain.DefaultTaxonomy(),
	}

	raw, ok, err := store.Get(ctx, kv.KeyTaxonomyTree)
	if err != nil {
		logger.Warn("taxonomy load failed, using defaults", zap.Error(err))
		return s
	}
	if !ok {
		return s
	}

	var tree domain.TaxonomyTree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		logger.Warn("taxonomy corrupted, using defaults", zap.Error(err))
		return s
	}
	s.tree = tree
	return s
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() domain.TaxonomyTree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// Subscribe registers a listener for tree changes and returns its
// unsubscribe function. Listeners run synchronously on the mutating call.
func (s *Store) Subscribe(listener func(domain.TaxonomyTree)) func() {
	return s.dispatcher.Subscribe(events.EventTaxonomyChanged, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.TaxonomyChangedPayload); ok {
			listener(payload.Tree)
		}
		return nil
	})
}

// AddType inserts an empty Type. Blank or duplicate names are a no-op.
func (s *Store) AddType(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	if _, exists := s.tree[name]; exists {
		s.mu.Unlock()
		return nil
	}
	s.tree[name] = map[string][]string{}
	s.mu.Unlock()
	return s.commit(ctx, "add_type")
}

// RenameType moves the old Type's whole subtree under the new name in one
// atomic update. A collision with an existing Type is rejected so the tree
// is never overwritten.
func (s *Store) RenameType(ctx context.Context, oldName, newName string) error {
	if newName == "" || newName == oldName {
		return nil
	}
	s.mu.Lock()
	groups, exists := s.tree[oldName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("type", map[string]any{"type": oldName})
	}
	if _, taken := s.tree[newName]; taken {
		s.mu.Unlock()
		return errorutil.NewValidationError("name already exists", map[string]any{"type": newName})
	}
	s.tree[newName] = groups
	delete(s.tree, oldName)
	s.mu.Unlock()
	return s.commit(ctx, "rename_type")
}

// DeleteType removes a Type and cascades to all its Groups and Subgroups.
func (s *Store) DeleteType(ctx context.Context, name string) error {
	s.mu.Lock()
	if _, exists := s.tree[name]; !exists {
		s.mu.Unlock()
		return nil
	}
	delete(s.tree, name)
	s.mu.Unlock()
	return s.commit(ctx, "delete_type")
}

// AddGroup inserts an empty Group under a Type. Blank or duplicate group
// names are a no-op; a missing Type is an error, so deleted Types cannot
// silently resurrect.
func (s *Store) AddGroup(ctx context.Context, typeName, name string) error {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	groups, exists := s.tree[typeName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("type", map[string]any{"type": typeName})
	}
	if _, taken := groups[name]; taken {
		s.mu.Unlock()
		return nil
	}
	groups[name] = []string{}
	s.mu.Unlock()
	return s.commit(ctx, "add_group")
}

// RenameGroup moves the Subgroup list under the new Group name atomically.
func (s *Store) RenameGroup(ctx context.Context, typeName, oldName, newName string) error {
	if newName == "" || newName == oldName {
		return nil
	}
	s.mu.Lock()
	groups, exists := s.tree[typeName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("type", map[string]any{"type": typeName})
	}
	subgroups, exists := groups[oldName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("group", map[string]any{"group": oldName})
	}
	if _, taken := groups[newName]; taken {
		s.mu.Unlock()
		return errorutil.NewValidationError("name already exists", map[string]any{"group": newName})
	}
	groups[newName] = subgroups
	delete(groups, oldName)
	s.mu.Unlock()
	return s.commit(ctx, "rename_group")
}

// DeleteGroup removes a Group and its Subgroups.
func (s *Store) DeleteGroup(ctx context.Context, typeName, name string) error {
	s.mu.Lock()
	groups, exists := s.tree[typeName]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	if _, exists := groups[name]; !exists {
		s.mu.Unlock()
		return nil
	}
	delete(groups, name)
	s.mu.Unlock()
	return s.commit(ctx, "delete_group")
}

// AddSubgroup appends a Subgroup to the (Type, Group) list. Duplicates
// within one Group are rejected.
func (s *Store) AddSubgroup(ctx context.Context, typeName, groupName, name string) error {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	groups, exists := s.tree[typeName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("type", map[string]any{"type": typeName})
	}
	subgroups, exists := groups[groupName]
	if !exists {
		s.mu.Unlock()
		return errorutil.NewNotFound("group", map[string]any{"group": groupName})
	}
	for _, existing := range subgroups {
		if existing == name {
			s.mu.Unlock()
			return errorutil.NewValidationError("name already exists", map[string]any{"subgroup": name})
		}
	}
	groups[groupName] = append(subgroups, name)
	s.mu.Unlock()
	return s.commit(ctx, "add_subgroup")
}

// DeleteSubgroup removes every occurrence equal to name. Pre-existing
// duplicates read from storage are all cleared in one call.
func (s *Store) DeleteSubgroup(ctx context.Context, typeName, groupName, name string) error {
	s.mu.Lock()
	groups, exists := s.tree[typeName]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	subgroups, exists := groups[groupName]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	kept := subgroups[:0]
	removed := false
	for _, existing := range subgroups {
		if existing == name {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	groups[groupName] = kept
	s.mu.Unlock()
	return s.commit(ctx, "delete_subgroup")
}

// commit persists the whole tree and then broadcasts the new snapshot.
func (s *Store) commit(ctx context.Context, operation string) error {
	snapshot := s.Snapshot()

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, kv.KeyTaxonomyTree, string(encoded)); err != nil {
		return err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventTaxonomyChanged,
		Payload: events.TaxonomyChangedPayload{Operation: operation, Tree: snapshot},
	})

	if s.mirror != nil {
		go func() {
			mirrorCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.mirror.SaveTaxonomy(mirrorCtx, snapshot); err != nil {
				s.logger.Warn("taxonomy mirror failed", zap.String("operation", operation), zap.Error(err))
			}
		}()
	}
	return nil
}

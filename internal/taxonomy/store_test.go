package taxonomy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/events"
	"github.com/spec-kit/ticket-sync/internal/kv"
	"github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

func newTestStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()
	memory := kv.NewMemory()
	store := NewStore(context.Background(), memory, events.NewInMemoryDispatcher(zap.NewNop()), nil, zap.NewNop())
	// Start every test from an empty tree rather than the defaults.
	for _, typeName := range store.Snapshot().TypeNames() {
		require.NoError(t, store.DeleteType(context.Background(), typeName))
	}
	return store, memory
}

func TestAddType(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "Incident"))
	assert.Equal(t, []string{"Incident"}, store.Snapshot().TypeNames())

	// Blank and duplicate names are silent no-ops.
	require.NoError(t, store.AddType(ctx, ""))
	require.NoError(t, store.AddType(ctx, "Incident"))
	assert.Equal(t, []string{"Incident"}, store.Snapshot().TypeNames())
}

func TestRenameType_MovesSubtreeAtomically(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddType(ctx, "Other"))
	require.NoError(t, store.AddGroup(ctx, "T", "G1"))
	require.NoError(t, store.AddGroup(ctx, "T", "G2"))
	require.NoError(t, store.AddSubgroup(ctx, "T", "G1", "S1"))
	require.NoError(t, store.AddSubgroup(ctx, "T", "G1", "S2"))

	before := store.Snapshot()
	require.NoError(t, store.RenameType(ctx, "T", "T2"))
	after := store.Snapshot()

	assert.NotContains(t, after, "T")
	require.Contains(t, after, "T2")
	assert.Equal(t, before["T"], after["T2"], "subtree must move intact")
	assert.Equal(t, before["Other"], after["Other"], "other types untouched")
}

func TestRenameType_CollisionLeavesTreeUnchanged(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddType(ctx, "T2"))
	require.NoError(t, store.AddGroup(ctx, "T", "G"))

	before := store.Snapshot()
	err := store.RenameType(ctx, "T", "T2")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION", errorutil.ToDomainError(err).Code)
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestRenameType_BlankOrSameIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AddType(ctx, "T"))

	before := store.Snapshot()
	require.NoError(t, store.RenameType(ctx, "T", ""))
	require.NoError(t, store.RenameType(ctx, "T", "T"))
	assert.True(t, before.Equal(store.Snapshot()))
}

func TestDeleteType_CascadesAndBlocksOrphanGroups(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddGroup(ctx, "T", "G"))
	require.NoError(t, store.AddSubgroup(ctx, "T", "G", "S"))

	require.NoError(t, store.DeleteType(ctx, "T"))
	assert.Empty(t, store.Snapshot())

	// A deleted Type must not silently resurrect through AddGroup.
	err := store.AddGroup(ctx, "T", "G")
	require.Error(t, err)

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddGroup(ctx, "T", "G"))
	assert.Empty(t, store.Snapshot().Subgroups("T", "G"))
}

func TestRenameGroup_PreservesSubgroups(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "Service"))
	require.NoError(t, store.AddGroup(ctx, "Service", "Hardware"))
	require.NoError(t, store.AddSubgroup(ctx, "Service", "Hardware", "Printer"))

	require.NoError(t, store.RenameGroup(ctx, "Service", "Hardware", "HW"))

	tree := store.Snapshot()
	expected := domain.TaxonomyTree{"Service": {"HW": {"Printer"}}}
	assert.True(t, expected.Equal(tree), "got %v", tree)
}

func TestAddSubgroup_RejectsDuplicates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddGroup(ctx, "T", "G"))
	require.NoError(t, store.AddSubgroup(ctx, "T", "G", "S"))

	err := store.AddSubgroup(ctx, "T", "G", "S")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION", errorutil.ToDomainError(err).Code)
	assert.Equal(t, []string{"S"}, store.Snapshot().Subgroups("T", "G"))

	// The same name is fine under a different group.
	require.NoError(t, store.AddGroup(ctx, "T", "G2"))
	require.NoError(t, store.AddSubgroup(ctx, "T", "G2", "S"))
}

func TestDeleteSubgroup_RemovesAllOccurrences(t *testing.T) {
	store, memory := newTestStore(t)
	ctx := context.Background()

	// Simulate a tree written by an older client that allowed duplicates.
	require.NoError(t, memory.Set(ctx, kv.KeyTaxonomyTree,
		`{"T": {"G": ["S", "Other", "S"]}}`))
	store = NewStore(ctx, memory, events.NewInMemoryDispatcher(zap.NewNop()), nil, zap.NewNop())

	require.NoError(t, store.DeleteSubgroup(ctx, "T", "G", "S"))
	assert.Equal(t, []string{"Other"}, store.Snapshot().Subgroups("T", "G"))
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	store, memory := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "T"))
	require.NoError(t, store.AddGroup(ctx, "T", "G"))

	reloaded := NewStore(ctx, memory, events.NewInMemoryDispatcher(zap.NewNop()), nil, zap.NewNop())
	assert.True(t, store.Snapshot().Equal(reloaded.Snapshot()))
}

func TestStore_FallsBackToDefaultsOnCorruption(t *testing.T) {
	memory := kv.NewMemory()
	ctx := context.Background()
	require.NoError(t, memory.Set(ctx, kv.KeyTaxonomyTree, "{{corrupt"))

	store := NewStore(ctx, memory, events.NewInMemoryDispatcher(zap.NewNop()), nil, zap.NewNop())
	assert.True(t, domain.DefaultTaxonomy().Equal(store.Snapshot()))
}

func TestStore_BroadcastsExactlyOnePerMutation(t *testing.T) {
	memory := kv.NewMemory()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	store := NewStore(context.Background(), memory, dispatcher, nil, zap.NewNop())
	ctx := context.Background()

	var received []domain.TaxonomyTree
	unsubscribe := store.Subscribe(func(tree domain.TaxonomyTree) {
		received = append(received, tree)
	})

	require.NoError(t, store.AddType(ctx, "Fresh"))
	require.Len(t, received, 1)
	assert.Contains(t, received[0], "Fresh")

	// No-ops publish nothing.
	require.NoError(t, store.AddType(ctx, "Fresh"))
	require.Len(t, received, 1)

	unsubscribe()
	require.NoError(t, store.AddType(ctx, "Later"))
	assert.Len(t, received, 1, "unsubscribed listener must not be notified")
}

func TestScenario_BuildAndRenameGroup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddType(ctx, "Service"))
	require.NoError(t, store.AddGroup(ctx, "Service", "Hardware"))
	require.NoError(t, store.AddSubgroup(ctx, "Service", "Hardware", "Printer"))
	require.NoError(t, store.RenameGroup(ctx, "Service", "Hardware", "HW"))

	expected := domain.TaxonomyTree{"Service": {"HW": {"Printer"}}}
	assert.True(t, expected.Equal(store.Snapshot()))
}

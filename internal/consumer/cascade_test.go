package consumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/events"
	"github.com/spec-kit/ticket-sync/internal/kv"
	"github.com/spec-kit/ticket-sync/internal/taxonomy"
)

func newTestSource(t *testing.T) *taxonomy.Store {
	t.Helper()
	store := taxonomy.NewStore(context.Background(), kv.NewMemory(), events.NewInMemoryDispatcher(zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()
	for _, typeName := range store.Snapshot().TypeNames() {
		require.NoError(t, store.DeleteType(ctx, typeName))
	}
	require.NoError(t, store.AddType(ctx, "Incident"))
	require.NoError(t, store.AddGroup(ctx, "Incident", "Hardware"))
	require.NoError(t, store.AddSubgroup(ctx, "Incident", "Hardware", "Printer"))
	return store
}

func TestCascadeSelector_Options(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())
	defer selector.Close()

	assert.Equal(t, []string{"Incident"}, selector.TypeOptions())

	selector.SelectType("Incident")
	assert.Equal(t, []string{"Hardware"}, selector.GroupOptions())

	selector.SelectGroup("Hardware")
	assert.Equal(t, []string{"Printer"}, selector.SubgroupOptions())
}

func TestCascadeSelector_FollowsTypeRename(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())
	defer selector.Close()

	selector.SelectType("Incident")
	selector.SelectGroup("Hardware")
	selector.SelectSubgroup("Printer")

	require.NoError(t, source.RenameType(context.Background(), "Incident", "Fault"))

	selection := selector.Selection()
	assert.Equal(t, "Fault", selection.Type)
	assert.Equal(t, "Hardware", selection.Group)
	assert.Equal(t, "Printer", selection.Subgroup)
}

func TestCascadeSelector_FollowsGroupRename(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())
	defer selector.Close()

	selector.SelectType("Incident")
	selector.SelectGroup("Hardware")

	require.NoError(t, source.RenameGroup(context.Background(), "Incident", "Hardware", "HW"))

	selection := selector.Selection()
	assert.Equal(t, "Incident", selection.Type)
	assert.Equal(t, "HW", selection.Group)
}

func TestCascadeSelector_ClearsSelectionOnDelete(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())
	defer selector.Close()

	selector.SelectType("Incident")
	selector.SelectGroup("Hardware")
	selector.SelectSubgroup("Printer")

	require.NoError(t, source.DeleteType(context.Background(), "Incident"))

	assert.Equal(t, Selection{}, selector.Selection())
}

func TestCascadeSelector_ClearsSubgroupOnSubgroupDelete(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())
	defer selector.Close()

	selector.SelectType("Incident")
	selector.SelectGroup("Hardware")
	selector.SelectSubgroup("Printer")

	require.NoError(t, source.DeleteSubgroup(context.Background(), "Incident", "Hardware", "Printer"))

	selection := selector.Selection()
	assert.Equal(t, "Incident", selection.Type)
	assert.Equal(t, "Hardware", selection.Group)
	assert.Empty(t, selection.Subgroup)
}

func TestCascadeSelector_CloseStopsUpdates(t *testing.T) {
	source := newTestSource(t)
	selector := NewCascadeSelector(source, zap.NewNop())

	selector.SelectType("Incident")
	selector.Close()

	require.NoError(t, source.DeleteType(context.Background(), "Incident"))

	// The selector kept its stale view; it was not notified after Close.
	assert.Equal(t, "Incident", selector.Selection().Type)
}

func TestFilterOptions_TracksTreeChanges(t *testing.T) {
	source := newTestSource(t)
	filters := NewFilterOptions(source)
	defer filters.Close()

	assert.Equal(t, []string{"Incident"}, filters.Types())

	require.NoError(t, source.AddType(context.Background(), "Change"))
	assert.Equal(t, []string{"Change", "Incident"}, filters.Types())
	assert.Equal(t, []string{"Hardware"}, filters.Groups("Incident"))
	assert.Len(t, filters.Statuses(), 7)
}

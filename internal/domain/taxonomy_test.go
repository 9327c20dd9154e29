package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyTree_CloneIsIndependent(t *testing.T) {
	original := TaxonomyTree{
		"Incident": {"Hardware": {"Printer", "Desktop"}},
	}
	clone := original.Clone()
	require.True(t, original.Equal(clone))

	clone["Incident"]["Hardware"][0] = "Scanner"
	clone["Incident"]["Software"] = []string{"OS"}

	assert.Equal(t, "Printer", original["Incident"]["Hardware"][0])
	assert.NotContains(t, original["Incident"], "Software")
}

func TestTaxonomyTree_Equal(t *testing.T) {
	a := TaxonomyTree{"T": {"G": {"S1", "S2"}}}
	b := TaxonomyTree{"T": {"G": {"S1", "S2"}}}
	assert.True(t, a.Equal(b))

	b["T"]["G"] = []string{"S2", "S1"}
	assert.False(t, a.Equal(b), "subgroup order is significant")
}

func TestTaxonomyTree_Accessors(t *testing.T) {
	tree := TaxonomyTree{
		"B-Type": {"Z-Group": {"S"}, "A-Group": {}},
		"A-Type": {},
	}
	assert.Equal(t, []string{"A-Type", "B-Type"}, tree.TypeNames())
	assert.Equal(t, []string{"A-Group", "Z-Group"}, tree.GroupNames("B-Type"))
	assert.Nil(t, tree.GroupNames("missing"))
	assert.Equal(t, []string{"S"}, tree.Subgroups("B-Type", "Z-Group"))
	assert.Nil(t, tree.Subgroups("B-Type", "missing"))
}

func TestDefaultTaxonomy_NotEmpty(t *testing.T) {
	tree := DefaultTaxonomy()
	require.NotEmpty(t, tree)
	for _, typeName := range tree.TypeNames() {
		assert.NotEmpty(t, tree.GroupNames(typeName))
	}
}

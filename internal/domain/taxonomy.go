package domain

import "sort"

// TaxonomyTree is the three-level classification scheme for tickets:
// Type name to Group name to ordered Subgroup list.
type TaxonomyTree map[string]map[string][]string

// DefaultTaxonomy is the built-in tree used when storage holds nothing.
func DefaultTaxonomy() TaxonomyTree {
	return TaxonomyTree{
		"Incident": {
			"Hardware": {"Desktop", "Printer", "Network Device"},
			"Software": {"Operating System", "Application"},
		},
		"Service Request": {
			"Access": {"New Account", "Password Reset"},
			"Equipment": {"Replacement", "Upgrade"},
		},
	}
}

// Clone deep-copies the tree so mutations never alias a published snapshot.
func (t TaxonomyTree) Clone() TaxonomyTree {
	out := make(TaxonomyTree, len(t))
	for typeName, groups := range t {
		copied := make(map[string][]string, len(groups))
		for groupName, subgroups := range groups {
			copied[groupName] = append([]string(nil), subgroups...)
		}
		out[typeName] = copied
	}
	return out
}

// Equal reports deep equality between two trees.
func (t TaxonomyTree) Equal(other TaxonomyTree) bool {
	if len(t) != len(other) {
		return false
	}
	for typeName, groups := range t {
		otherGroups, ok := other[typeName]
		if !ok || len(groups) != len(otherGroups) {
			return false
		}
		for groupName, subgroups := range groups {
			otherSubgroups, ok := otherGroups[groupName]
			if !ok || len(subgroups) != len(otherSubgroups) {
				return false
			}
			for i, name := range subgroups {
				if otherSubgroups[i] != name {
					return false
				}
			}
		}
	}
	return true
}

// TypeNames returns the sorted Type keys.
func (t TaxonomyTree) TypeNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupNames returns the sorted Group keys under a Type, or nil if the Type
// does not exist.
func (t TaxonomyTree) GroupNames(typeName string) []string {
	groups, ok := t[typeName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subgroups returns a copy of the subgroup list for a (Type, Group) pair, or
// nil if either level is missing.
func (t TaxonomyTree) Subgroups(typeName, groupName string) []string {
	groups, ok := t[typeName]
	if !ok {
		return nil
	}
	subgroups, ok := groups[groupName]
	if !ok {
		return nil
	}
	return append([]string(nil), subgroups...)
}

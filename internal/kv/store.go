package kv

import "context"

// Well-known keys used by the sync core.
const (
	KeyTaxonomyTree = "taxonomy:tree"
	KeyTicketCache  = "tickets:last-good"
)

// Store is the durable string-keyed store the sync core persists into.
// Values are whole-document overwrites; there are no partial writes.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set unconditionally overwrites any prior value.
	Set(ctx context.Context, key, value string) error
}

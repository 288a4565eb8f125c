package cart

import "context"

// Repository persists the serialized cart. The in-memory cart is authoritative
// for the session; the stored copy only survives restarts, so every method is
// called best-effort by the store.
type Repository interface {
	// Load returns the stored cart, or an empty cart when nothing usable is stored.
	Load(ctx context.Context) ([]Item, error)

	// Save replaces the stored cart with the given items.
	Save(ctx context.Context, items []Item) error
}

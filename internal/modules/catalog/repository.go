package catalog

import "context"

// Repository defines the interface for catalog product storage.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, brand string) ([]*Product, error)

	// Seed inserts the given products if the catalog is empty.
	Seed(ctx context.Context, products []*Product) error
}

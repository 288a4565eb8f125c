package cart

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kmuyenga/solestore-backend/internal/modules/catalog"
)

// Service is the cart store: the ordered set of selected items for this
// session. Mutations update the in-memory cart and then flush it to durable
// storage best-effort; a failed flush is logged and never surfaced, the cart
// is a convenience cache rather than a ledger.
type Service interface {
	Add(ctx context.Context, productID int64, size string, quantity int) (Item, error)
	SetQuantity(ctx context.Context, productID int64, size string, quantity int)
	Remove(ctx context.Context, productID int64, size string)
	Clear(ctx context.Context)
	Items(ctx context.Context) []Item
	TotalQuantity(ctx context.Context) int
}

type service struct {
	mu      sync.Mutex
	items   []Item
	repo    Repository
	catalog catalog.Service
}

// NewService rehydrates the cart from storage and returns the store. A cart
// that cannot be read starts empty.
func NewService(repo Repository, cat catalog.Service) Service {
	s := &service{repo: repo, catalog: cat}
	items, err := repo.Load(context.Background())
	if err != nil {
		log.Printf("cart: could not rehydrate stored cart, starting empty: %v", err)
		items = nil
	}
	s.items = items
	return s
}

func (s *service) Add(ctx context.Context, productID int64, size string, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, fmt.Errorf("quantity must be >= 1, got %d", quantity)
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return Item{}, fmt.Errorf("resolve product %d: %w", productID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID && s.items[i].Size == size {
			s.items[i].Quantity += quantity
			s.flush()
			return s.items[i], nil
		}
	}

	it := Item{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
		Size:      size,
		Quantity:  quantity,
	}
	s.items = append(s.items, it)
	s.flush()
	return it, nil
}

func (s *service) SetQuantity(ctx context.Context, productID int64, size string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID, size)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID && s.items[i].Size == size {
			s.items[i].Quantity = quantity
			s.flush()
			return
		}
	}
}

func (s *service) Remove(_ context.Context, productID int64, size string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID && s.items[i].Size == size {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.flush()
			return
		}
	}
}

func (s *service) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.flush()
}

func (s *service) Items(_ context.Context) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *service) TotalQuantity(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// flush writes the current cart to storage. Callers hold s.mu. The write uses
// its own short deadline so a stalled storage layer cannot hang a mutation.
func (s *service) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	if err := s.repo.Save(ctx, items); err != nil {
		log.Printf("cart: persist failed (cart kept in memory): %v", err)
	}
}

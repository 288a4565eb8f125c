package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/kmuyenga/solestore-backend/internal/modules/cart"
	"github.com/kmuyenga/solestore-backend/internal/modules/diag"
	"github.com/kmuyenga/solestore-backend/internal/modules/notifier"
)

type mockCart struct {
	m       sync.Mutex
	items   []cart.Item
	cleared bool
}

func (m *mockCart) Add(context.Context, int64, string, int) (cart.Item, error) {
	return cart.Item{}, nil
}
func (m *mockCart) SetQuantity(context.Context, int64, string, int) {}
func (m *mockCart) Remove(context.Context, int64, string)           {}

func (m *mockCart) Clear(context.Context) {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared = true
	m.items = nil
}

func (m *mockCart) Items(context.Context) []cart.Item {
	m.m.Lock()
	defer m.m.Unlock()
	return m.items
}

func (m *mockCart) TotalQuantity(context.Context) int {
	m.m.Lock()
	defer m.m.Unlock()
	total := 0
	for _, it := range m.items {
		total += it.Quantity
	}
	return total
}

func (m *mockCart) wasCleared() bool {
	m.m.Lock()
	defer m.m.Unlock()
	return m.cleared
}

// mockChannel replays the configured errors in order, then succeeds.
type mockChannel struct {
	m        sync.Mutex
	errs     []error
	calls    int
	payloads []notifier.Payload
}

func (m *mockChannel) Send(_ context.Context, p notifier.Payload) (*notifier.Receipt, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	m.payloads = append(m.payloads, p)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &notifier.Receipt{Status: 200, Text: "OK"}, nil
}

func (m *mockChannel) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

func (m *mockChannel) lastPayload() notifier.Payload {
	m.m.Lock()
	defer m.m.Unlock()
	if len(m.payloads) == 0 {
		return nil
	}
	return m.payloads[len(m.payloads)-1]
}

type mockReady struct {
	m     sync.Mutex
	err   error
	calls int
	block chan struct{} // when set, WaitUntilReady blocks until closed
}

func (m *mockReady) WaitUntilReady(ctx context.Context, _ time.Duration) error {
	m.m.Lock()
	m.calls++
	block := m.block
	err := m.err
	m.m.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	return err
}

func (m *mockReady) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type mockProber struct{ report diag.Report }

func (m *mockProber) Report(context.Context) diag.Report { return m.report }

// memRepo is an in-memory Repository.
type memRepo struct {
	m         sync.Mutex
	orders    []*Order
	failed    []*FailedNotification
	saveErr   error
	appendErr error
}

func (r *memRepo) SaveOrder(_ context.Context, o *Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders = append(r.orders, o)
	return nil
}

func (r *memRepo) LastOrder(context.Context) (*Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if len(r.orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return r.orders[len(r.orders)-1], nil
}

func (r *memRepo) GetOrderByNumber(_ context.Context, n string) (*Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == n {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memRepo) AppendFailedNotification(_ context.Context, fn *FailedNotification) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.failed = append(r.failed, fn)
	if len(r.failed) > FailedLogCap {
		r.failed = r.failed[len(r.failed)-FailedLogCap:]
	}
	return nil
}

func (r *memRepo) ListFailedNotifications(context.Context) ([]*FailedNotification, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.failed, nil
}

func (r *memRepo) failedCount() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.failed)
}

func (r *memRepo) orderCount() int {
	r.m.Lock()
	defer r.m.Unlock()
	return len(r.orders)
}

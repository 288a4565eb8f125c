package checkout

import "context"

// FailedLogCap bounds the failed-notification log. The log is FIFO: once the
// cap is reached the oldest entries are evicted first.
const FailedLogCap = 20

// Repository defines data access for orders and the failed-notification log.
type Repository interface {
	// SaveOrder persists the committed order record.
	SaveOrder(ctx context.Context, o *Order) error

	// LastOrder returns the most recently committed order, or ErrOrderNotFound.
	LastOrder(ctx context.Context) (*Order, error)

	// GetOrderByNumber returns the order with the given number, or ErrOrderNotFound.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// AppendFailedNotification adds an entry to the log, evicting the oldest
	// entries beyond FailedLogCap.
	AppendFailedNotification(ctx context.Context, fn *FailedNotification) error

	// ListFailedNotifications returns the log, newest first.
	ListFailedNotifications(ctx context.Context) ([]*FailedNotification, error)
}

package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/kmuyenga/solestore-backend/internal/modules/cart"
	"github.com/kmuyenga/solestore-backend/internal/modules/diag"
	"github.com/kmuyenga/solestore-backend/internal/modules/notifier"
	"github.com/kmuyenga/solestore-backend/internal/modules/pricing"
)

// Readiness gates sends on the delivery channel becoming available.
type Readiness interface {
	WaitUntilReady(ctx context.Context, timeout time.Duration) error
}

// Prober supplies environment facts used to pick retry parameters.
type Prober interface {
	Report(ctx context.Context) diag.Report
}

// Options tune the submission pipeline.
type Options struct {
	MaxAttempts    int
	ReadyTimeout   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Currency       string
	DeliveryDays   int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.ReadyTimeout == 0 {
		o.ReadyTimeout = 15 * time.Second
	}
	if o.InitialBackoff == 0 {
		o.InitialBackoff = 2 * time.Second
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 30 * time.Second
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.DeliveryDays == 0 {
		o.DeliveryDays = 3
	}
	return o
}

// Service drives one checkout attempt through
// IDLE → VALIDATING → NOTIFYING → {NOTIFIED, DEGRADED} → COMMITTED.
// Operator notification is best-effort and never blocks the order: the worst
// outcome a customer can see is "placed, notification unconfirmed".
type Service interface {
	Submit(ctx context.Context, info CustomerInfo) (*SubmitResult, error)
	LastOrder(ctx context.Context) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	FailedNotifications(ctx context.Context) ([]*FailedNotification, error)
	Phase() Phase
}

type service struct {
	cart    cart.Service
	policy  pricing.Policy
	channel notifier.Channel
	ready   Readiness
	probe   Prober
	repo    Repository
	opts    Options

	now      func() time.Time
	inFlight atomic.Bool
	phase    atomic.Value
}

// NewService creates the submission orchestrator.
func NewService(cartSvc cart.Service, policy pricing.Policy, channel notifier.Channel,
	ready Readiness, probe Prober, repo Repository, opts Options) Service {
	s := &service{
		cart:    cartSvc,
		policy:  policy,
		channel: channel,
		ready:   ready,
		probe:   probe,
		repo:    repo,
		opts:    opts.withDefaults(),
		now:     time.Now,
	}
	s.phase.Store(PhaseIdle)
	return s
}

func (s *service) Phase() Phase { return s.phase.Load().(Phase) }

func (s *service) setPhase(p Phase) { s.phase.Store(p) }

func (s *service) Submit(ctx context.Context, info CustomerInfo) (*SubmitResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	s.setPhase(PhaseValidating)
	if errs := validateCustomer(info); len(errs) > 0 {
		s.setPhase(PhaseIdle)
		return nil, &ValidationError{Fields: errs}
	}

	items := s.cart.Items(ctx)
	if len(items) == 0 {
		s.setPhase(PhaseIdle)
		return nil, ErrEmptyCart
	}

	breakdown := pricing.ComputeBreakdown(cart.Lines(items), s.policy)
	createdAt := s.now()
	number := orderNumber(createdAt)
	payload := buildPayload(number, info, items, breakdown, createdAt)

	s.setPhase(PhaseNotifying)
	report := s.probe.Report(ctx)
	attempts, notifyErr := s.notify(ctx, payload, s.plan(report))

	outcome := OutcomeNotified
	if notifyErr != nil {
		outcome = OutcomeDegraded
		s.setPhase(PhaseDegraded)
		log.Printf("checkout: notification for %s gave up after %d attempt(s): %v",
			number, attempts, notifyErr)
		s.recordFailure(ctx, number, info, items, breakdown.Total, attempts, notifyErr, report)
	} else {
		s.setPhase(PhaseNotified)
	}

	order := &Order{
		ID:                uuid.New(),
		OrderNumber:       number,
		Customer:          info,
		Items:             orderItems(items),
		Breakdown:         breakdown,
		Currency:          s.opts.Currency,
		CreatedAt:         createdAt,
		EstimatedDelivery: createdAt.AddDate(0, 0, s.opts.DeliveryDays),
	}

	// Commit regardless of the notification outcome. The delivery channel is
	// a courtesy; the stored order record is what the confirmation view reads.
	if err := s.repo.SaveOrder(ctx, order); err != nil {
		log.Printf("checkout: persist order %s failed: %v", number, err)
	}
	s.cart.Clear(ctx)
	s.setPhase(PhaseCommitted)

	return &SubmitResult{Outcome: outcome, OrderNumber: number, Order: order}, nil
}

type notifyPlan struct {
	attempts     int
	readyTimeout time.Duration
}

// plan picks retry parameters from the environment report. With no route to
// the provider there is no point retrying at full strength.
func (s *service) plan(r diag.Report) notifyPlan {
	p := notifyPlan{attempts: s.opts.MaxAttempts, readyTimeout: s.opts.ReadyTimeout}
	if !r.Online || !r.ChannelConfigured {
		p.attempts = 1
		if p.readyTimeout > 2*time.Second {
			p.readyTimeout = 2 * time.Second
		}
	}
	return p
}

// notify runs the readiness wait + send under exponential backoff. Readiness
// timeouts are always retried; send rejections are retried only when
// transient. Returns how many attempts ran and the final error, if any.
func (s *service) notify(ctx context.Context, payload notifier.Payload, plan notifyPlan) (int, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialBackoff
	b.MaxInterval = s.opts.MaxBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(plan.attempts-1)), ctx)

	attempts := 0
	op := func() error {
		attempts++
		if err := s.ready.WaitUntilReady(ctx, plan.readyTimeout); err != nil {
			return err
		}
		_, err := s.channel.Send(ctx, payload)
		if err != nil {
			if notifier.IsTransientSend(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		log.Printf("checkout: notification attempt %d failed, retrying in %s: %v", attempts, wait, err)
	})
	return attempts, err
}

// recordFailure appends to the failed-notification log, itself best-effort.
func (s *service) recordFailure(ctx context.Context, number string, info CustomerInfo,
	items []cart.Item, total int64, attempts int, lastErr error, report diag.Report) {
	fn := &FailedNotification{
		ID:          uuid.New(),
		OrderNumber: number,
		Customer:    info,
		Items:       orderItems(items),
		Total:       total,
		Attempts:    attempts,
		LastError:   lastErr.Error(),
		Fingerprint: report.Summary(),
		CreatedAt:   s.now(),
	}
	if err := s.repo.AppendFailedNotification(ctx, fn); err != nil {
		log.Printf("checkout: could not record failed notification for %s: %v", number, err)
	}
}

func (s *service) LastOrder(ctx context.Context) (*Order, error) {
	return s.repo.LastOrder(ctx)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.repo.GetOrderByNumber(ctx, orderNumber)
}

func (s *service) FailedNotifications(ctx context.Context) ([]*FailedNotification, error) {
	return s.repo.ListFailedNotifications(ctx)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// orderNumber derives a human-readable order number from the submission time:
// ORD-YYYYMMDD-HHMMSS.
func orderNumber(t time.Time) string {
	return "ORD-" + t.UTC().Format("20060102-150405")
}

func orderItems(items []cart.Item) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Brand:     it.Brand,
			Size:      it.Size,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.UnitPrice * int64(it.Quantity),
		})
	}
	return out
}

// buildPayload flattens the order into the string key/value shape the
// delivery channel template expects.
func buildPayload(number string, info CustomerInfo, items []cart.Item,
	b pricing.Breakdown, createdAt time.Time) notifier.Payload {
	var lines []string
	for _, it := range items {
		size := it.Size
		if size == "" {
			size = "-"
		}
		lines = append(lines, fmt.Sprintf("%d x %s %s (size %s) = %d",
			it.Quantity, it.Brand, it.Name, size, it.UnitPrice*int64(it.Quantity)))
	}
	return notifier.Payload{
		"order_number":  number,
		"customer_name": strings.TrimSpace(info.FirstName + " " + info.LastName),
		"phone":         info.Phone,
		"address":       info.Address,
		"city":          info.City,
		"notes":         info.Notes,
		"order_lines":   strings.Join(lines, "\n"),
		"subtotal":      fmt.Sprintf("%d", b.Subtotal),
		"discount":      fmt.Sprintf("%d", b.Discount),
		"shipping":      fmt.Sprintf("%d", b.Shipping),
		"total":         fmt.Sprintf("%d", b.Total),
		"submitted_at":  createdAt.UTC().Format(time.RFC3339),
	}
}

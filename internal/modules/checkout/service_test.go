package checkout

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/kmuyenga/solestore-backend/internal/modules/cart"
	"github.com/kmuyenga/solestore-backend/internal/modules/diag"
	"github.com/kmuyenga/solestore-backend/internal/modules/notifier"
	"github.com/kmuyenga/solestore-backend/internal/modules/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioCart() []cart.Item {
	return []cart.Item{
		{ProductID: 1, Name: "Air Zoom Pegasus 40", Brand: "Nike", UnitPrice: 1950, Size: "42", Quantity: 1},
		{ProductID: 2, Name: "Ultraboost Light", Brand: "Adidas", UnitPrice: 1750, Size: "43", Quantity: 2},
	}
}

func scenarioPolicy() pricing.Policy {
	return pricing.Policy{
		PromoProductIDs:       map[int64]struct{}{1: {}},
		PromoUnitPrice:        1500,
		FlatShippingFee:       80,
		FreeShippingThreshold: 3000,
	}
}

func onlineReport() diag.Report {
	return diag.Report{Online: true, StorageWritable: true, ChannelConfigured: true, CheckedAt: time.Now()}
}

type fixture struct {
	svc     Service
	cart    *mockCart
	channel *mockChannel
	ready   *mockReady
	repo    *memRepo
}

func newFixture(channel *mockChannel, ready *mockReady, report diag.Report) *fixture {
	f := &fixture{
		cart:    &mockCart{items: scenarioCart()},
		channel: channel,
		ready:   ready,
		repo:    &memRepo{},
	}
	f.svc = NewService(f.cart, scenarioPolicy(), channel, ready, &mockProber{report: report}, f.repo, Options{
		MaxAttempts:    3,
		ReadyTimeout:   20 * time.Millisecond,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
	return f
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

func TestSubmitNotified(t *testing.T) {
	f := newFixture(&mockChannel{}, &mockReady{}, onlineReport())

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Regexp(t, orderNumberPattern, res.OrderNumber)
	assert.Equal(t, 1, f.channel.callCount())
	assert.True(t, f.cart.wasCleared())
	assert.Zero(t, f.repo.failedCount())
	assert.Equal(t, PhaseCommitted, f.svc.Phase())

	// Order record snapshots the priced cart.
	require.Equal(t, 1, f.repo.orderCount())
	o, err := f.svc.LastOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.OrderNumber, o.OrderNumber)
	assert.Equal(t, int64(5000), o.Breakdown.Total)
	assert.Equal(t, int64(450), o.Breakdown.Discount)
	assert.Zero(t, o.Breakdown.Shipping)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, int64(3500), o.Items[1].LineTotal)
	assert.Equal(t, o.CreatedAt.AddDate(0, 0, 3), o.EstimatedDelivery)

	payload := f.channel.lastPayload()
	assert.Equal(t, "Dana Levi", payload["customer_name"])
	assert.Equal(t, "5000", payload["total"])
	assert.Equal(t, "450", payload["discount"])
	assert.Equal(t, res.OrderNumber, payload["order_number"])
	assert.Contains(t, payload["order_lines"], "2 x Adidas Ultraboost Light")
}

func TestSubmitValidationBlocksBeforeNotifying(t *testing.T) {
	f := newFixture(&mockChannel{}, &mockReady{}, onlineReport())

	info := validInfo()
	info.Phone = ""
	_, err := f.svc.Submit(context.Background(), info)

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "phone")

	assert.Zero(t, f.ready.callCount())
	assert.Zero(t, f.channel.callCount())
	assert.False(t, f.cart.wasCleared())
	assert.Zero(t, f.repo.orderCount())
	assert.Equal(t, PhaseIdle, f.svc.Phase())
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newFixture(&mockChannel{}, &mockReady{}, onlineReport())
	f.cart.items = nil

	_, err := f.svc.Submit(context.Background(), validInfo())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.channel.callCount())
}

func TestSubmitDegradedWhenChannelAlwaysFails(t *testing.T) {
	channel := &mockChannel{errs: []error{
		&notifier.SendRejectedError{Reason: notifier.ReasonNetwork, Message: "down"},
		&notifier.SendRejectedError{Reason: notifier.ReasonNetwork, Message: "down"},
		&notifier.SendRejectedError{Reason: notifier.ReasonNetwork, Message: "down"},
	}}
	f := newFixture(channel, &mockReady{}, onlineReport())

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.NotEmpty(t, res.OrderNumber)
	assert.Equal(t, 3, channel.callCount())
	assert.True(t, f.cart.wasCleared())
	assert.Equal(t, 1, f.repo.orderCount())

	require.Equal(t, 1, f.repo.failedCount())
	fn := f.repo.failed[0]
	assert.Equal(t, res.OrderNumber, fn.OrderNumber)
	assert.Equal(t, 3, fn.Attempts)
	assert.Contains(t, fn.LastError, "down")
	assert.NotEmpty(t, fn.Fingerprint)
	assert.Equal(t, int64(5000), fn.Total)
}

func TestSubmitDoesNotRetryPermanentRejection(t *testing.T) {
	channel := &mockChannel{errs: []error{
		&notifier.SendRejectedError{Reason: notifier.ReasonUnauthorized, Status: 403, Message: "bad key"},
	}}
	f := newFixture(channel, &mockReady{}, onlineReport())

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 1, channel.callCount())
	assert.Equal(t, 1, f.repo.failedCount())
	assert.Equal(t, 1, f.repo.failed[0].Attempts)
}

func TestSubmitRetriesTransientRejectionThenSucceeds(t *testing.T) {
	channel := &mockChannel{errs: []error{
		&notifier.SendRejectedError{Reason: notifier.ReasonRateLimited, Status: 429, Message: "slow down"},
	}}
	f := newFixture(channel, &mockReady{}, onlineReport())

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.Equal(t, 2, channel.callCount())
	assert.Zero(t, f.repo.failedCount())
}

func TestSubmitRetriesReadinessTimeouts(t *testing.T) {
	ready := &mockReady{err: &notifier.ReadinessTimeoutError{State: notifier.StatePending, Waited: time.Millisecond}}
	channel := &mockChannel{}
	f := newFixture(channel, ready, onlineReport())

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 3, ready.callCount())
	assert.Zero(t, channel.callCount(), "send must not run without readiness")
	assert.Equal(t, 1, f.repo.failedCount())
}

func TestSubmitOfflineUsesSingleAttempt(t *testing.T) {
	ready := &mockReady{err: &notifier.ReadinessTimeoutError{State: notifier.StatePending, Waited: time.Millisecond}}
	f := newFixture(&mockChannel{}, ready, diag.Report{Online: false})

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 1, ready.callCount())
}

func TestSubmitCommitsEvenWhenOrderPersistFails(t *testing.T) {
	f := newFixture(&mockChannel{}, &mockReady{}, onlineReport())
	f.repo.saveErr = ErrOrderNotFound // any persistence failure will do

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotified, res.Outcome)
	assert.True(t, f.cart.wasCleared())
}

func TestSubmitDegradedEvenWhenFailedLogAppendFails(t *testing.T) {
	channel := &mockChannel{errs: []error{
		&notifier.SendRejectedError{Reason: notifier.ReasonUnauthorized, Message: "bad key"},
	}}
	f := newFixture(channel, &mockReady{}, onlineReport())
	f.repo.appendErr = ErrOrderNotFound

	res, err := f.svc.Submit(context.Background(), validInfo())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, 1, f.repo.orderCount())
}

func TestSubmitRejectsReentrantAttempt(t *testing.T) {
	block := make(chan struct{})
	ready := &mockReady{block: block}
	f := newFixture(&mockChannel{}, ready, onlineReport())

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), validInfo())
		done <- err
	}()

	// Wait for the first submit to reach the readiness gate.
	require.Eventually(t, func() bool { return ready.callCount() > 0 },
		time.Second, time.Millisecond)

	_, err := f.svc.Submit(context.Background(), validInfo())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(block)
	require.NoError(t, <-done)
}

func TestOrderNumberDerivedFromSubmissionTime(t *testing.T) {
	at := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "ORD-20260831-140509", orderNumber(at))
}

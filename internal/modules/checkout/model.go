package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/kmuyenga/solestore-backend/internal/modules/pricing"
)

// Phase is the lifecycle state of one submission attempt.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseValidating Phase = "VALIDATING"
	PhaseNotifying  Phase = "NOTIFYING"
	PhaseNotified   Phase = "NOTIFIED"
	PhaseDegraded   Phase = "DEGRADED"
	PhaseCommitted  Phase = "COMMITTED"
)

// Outcome tells the caller whether the operator notification went through.
// It is advisory only: the order is committed either way.
type Outcome string

const (
	OutcomeNotified Outcome = "notified"
	OutcomeDegraded Outcome = "degraded"
)

// CustomerInfo holds the checkout form fields. Everything except Notes is
// required.
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Notes     string `json:"notes,omitempty"`
}

// OrderItem is a snapshot of one cart row at the moment the order was placed.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Size      string `json:"size,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// Order is the immutable record created once per successful checkout attempt.
type Order struct {
	ID                uuid.UUID         `json:"id"`
	OrderNumber       string            `json:"order_number"`
	Customer          CustomerInfo      `json:"customer"`
	Items             []OrderItem       `json:"items"`
	Breakdown         pricing.Breakdown `json:"breakdown"`
	Currency          string            `json:"currency"`
	CreatedAt         time.Time         `json:"created_at"`
	EstimatedDelivery time.Time         `json:"estimated_delivery"`
}

// SubmitResult is returned to the UI after a committed checkout.
type SubmitResult struct {
	Outcome     Outcome `json:"outcome"`
	OrderNumber string  `json:"order_number"`
	Order       *Order  `json:"order"`
}

// FailedNotification is one exhausted delivery attempt, kept so an operator
// can reconcile orders whose notification could not be confirmed.
type FailedNotification struct {
	ID          uuid.UUID    `json:"id"`
	OrderNumber string       `json:"order_number"`
	Customer    CustomerInfo `json:"customer"`
	Items       []OrderItem  `json:"items"`
	Total       int64        `json:"total"`
	Attempts    int          `json:"attempts"`
	LastError   string       `json:"last_error"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

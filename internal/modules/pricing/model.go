package pricing

// All monetary amounts are integer minor units of the store currency.
// Keeping money integral avoids floating-point drift across subtotals.

// Policy is the fixed pricing configuration for the store: which product ids
// carry the promotional price, the promotional unit price itself, and the
// shipping rule. It is read-only configuration, not user data.
type Policy struct {
	PromoProductIDs       map[int64]struct{}
	PromoUnitPrice        int64
	FlatShippingFee       int64
	FreeShippingThreshold int64
}

// Promotional reports whether the given product id is in the promotional set.
func (p Policy) Promotional(productID int64) bool {
	_, ok := p.PromoProductIDs[productID]
	return ok
}

// DefaultPolicy returns the store's standing promotion and shipping rule.
func DefaultPolicy() Policy {
	return Policy{
		PromoProductIDs:       map[int64]struct{}{},
		PromoUnitPrice:        1500,
		FlatShippingFee:       80,
		FreeShippingThreshold: 3000,
	}
}

// Line is one priced cart row as seen by the engine.
type Line struct {
	ProductID int64
	UnitPrice int64
	Quantity  int
}

// Breakdown is the derived price summary for a cart. It is computed on demand
// and never persisted on its own; an order stores a snapshot of it.
type Breakdown struct {
	Subtotal           int64 `json:"subtotal"`
	DiscountedSubtotal int64 `json:"discounted_subtotal"`
	Discount           int64 `json:"discount"`
	Shipping           int64 `json:"shipping"`
	Total              int64 `json:"total"`
}

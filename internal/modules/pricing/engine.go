package pricing

// ComputeBreakdown prices the given lines under the policy.
//
// The promotional unit price replaces the catalog price for promotional
// product ids, but only when it is actually lower, so the discount can never
// go negative. Shipping is waived entirely once the discounted subtotal meets
// the free-shipping threshold; there is no partial shipping charge.
func ComputeBreakdown(lines []Line, policy Policy) Breakdown {
	var b Breakdown
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		qty := int64(l.Quantity)
		unit := l.UnitPrice
		if policy.Promotional(l.ProductID) && policy.PromoUnitPrice < l.UnitPrice {
			unit = policy.PromoUnitPrice
		}
		b.Subtotal += l.UnitPrice * qty
		b.DiscountedSubtotal += unit * qty
	}
	b.Discount = b.Subtotal - b.DiscountedSubtotal
	if len(lines) > 0 && b.DiscountedSubtotal < policy.FreeShippingThreshold {
		b.Shipping = policy.FlatShippingFee
	}
	b.Total = b.DiscountedSubtotal + b.Shipping
	return b
}

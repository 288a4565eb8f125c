package cart

import "github.com/kmuyenga/solestore-backend/internal/modules/pricing"

// Item is one selected product variant in the cart. The catalog name, brand
// and price are snapshotted at add time. At most one Item exists per
// (product id, size) pair; adding the same pair again merges quantities.
type Item struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	UnitPrice int64  `json:"unit_price"`
	ImageURL  string `json:"image_url,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Lines converts cart items into pricing engine input.
func Lines(items []Item) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{
			ProductID: it.ProductID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return lines
}

package catalog

// Product is a sneaker in the fixed store catalog. The catalog is seeded at
// startup and read-only afterwards; prices are integer minor units.
type Product struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Price    int64    `json:"price"`
	ImageURL string   `json:"image_url,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
	OnSale   bool     `json:"on_sale"`
}

package catalog

// DefaultProducts is the fixed sneaker catalog the store sells. Sale items are
// the ones eligible for the promotional price in the pricing policy.
func DefaultProducts() []*Product {
	sizes := []string{"40", "41", "42", "43", "44", "45"}
	return []*Product{
		{ID: 1, Name: "Air Zoom Pegasus 40", Brand: "Nike", Price: 1950, ImageURL: "/img/pegasus-40.jpg", Sizes: sizes, OnSale: true},
		{ID: 2, Name: "Ultraboost Light", Brand: "Adidas", Price: 1750, ImageURL: "/img/ultraboost-light.jpg", Sizes: sizes},
		{ID: 3, Name: "RS-X Efekt", Brand: "Puma", Price: 1250, ImageURL: "/img/rsx-efekt.jpg", Sizes: sizes},
		{ID: 4, Name: "Classic Leather", Brand: "Reebok", Price: 990, ImageURL: "/img/classic-leather.jpg", Sizes: sizes},
		{ID: 5, Name: "990v6", Brand: "New Balance", Price: 2350, ImageURL: "/img/990v6.jpg", Sizes: sizes, OnSale: true},
		{ID: 6, Name: "Gel-Kayano 30", Brand: "Asics", Price: 2100, ImageURL: "/img/gel-kayano-30.jpg", Sizes: sizes},
		{ID: 7, Name: "Chuck 70 High", Brand: "Converse", Price: 1000, ImageURL: "/img/chuck-70.jpg", Sizes: sizes},
		{ID: 8, Name: "Old Skool", Brand: "Vans", Price: 920, ImageURL: "/img/old-skool.jpg", Sizes: sizes},
	}
}

// SaleProductIDs returns the ids of the products flagged as on sale.
func SaleProductIDs(products []*Product) []int64 {
	var ids []int64
	for _, p := range products {
		if p.OnSale {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

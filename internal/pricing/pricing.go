// Package pricing joins cart lines against the catalog snapshot at read time.
// Prices are not frozen into the cart: the cart view and the order gateway
// both recompute from the current catalog.
package pricing

import "github.com/velora/storefront/internal/domain"

type Catalog interface {
	Lookup(id string) (domain.Product, bool)
}

// PricedLine is one reconciled cart line. Available is false when the product
// has left the active catalog; such lines still display but price as zero.
type PricedLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
	Available bool    `json:"available"`
}

func PriceLines(lines []domain.CartLine, catalog Catalog) []PricedLine {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		pl := PricedLine{
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
		}
		if p, ok := catalog.Lookup(line.ProductID); ok {
			pl.Name = p.Name
			pl.UnitPrice = p.Price
			pl.LineTotal = p.Price * float64(line.Quantity)
			pl.Available = true
		}
		priced = append(priced, pl)
	}
	return priced
}

// Subtotal sums price*quantity over all lines with quantity > 0. Lines whose
// product is missing from the catalog contribute zero. The sum is independent
// of line order.
func Subtotal(lines []domain.CartLine, catalog Catalog) float64 {
	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if p, ok := catalog.Lookup(line.ProductID); ok {
			total += p.Price * float64(line.Quantity)
		}
	}
	return total
}

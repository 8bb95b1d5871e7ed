package inventory

import "tienda-api/models"

// TotalStock computes the purchasable units of a product snapshot: the
// scalar stock for variant-less products, otherwise the sum over active
// variants. Negative stored values count as zero.
func TotalStock(p *models.Product) int {
	if p == nil {
		return 0
	}
	if len(p.Variants) == 0 {
		if p.Stock > 0 {
			return p.Stock
		}
		return 0
	}
	total := 0
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Active() && v.Stock > 0 {
			total += v.Stock
		}
	}
	return total
}

// IsExhausted reports whether no variant can satisfy any positive-quantity
// order: true for an empty or nil list, and true when every variant is
// inactive or out of stock.
func IsExhausted(variants []models.Variant) bool {
	for i := range variants {
		v := &variants[i]
		if v.Active() && v.Stock > 0 {
			return false
		}
	}
	return true
}

// ProductExhausted extends IsExhausted to variant-less products, where the
// scalar stock decides.
func ProductExhausted(p *models.Product) bool {
	if p == nil {
		return true
	}
	if len(p.Variants) == 0 {
		return p.Stock <= 0
	}
	return IsExhausted(p.Variants)
}

// Package inventory holds the pure stock rules: variant availability,
// total-stock aggregation and the exhaustion flag. Nothing here touches
// storage; callers pass in product snapshots.
package inventory

import (
	"errors"

	"tienda-api/models"
)

var (
	ErrInvalidInput      = errors.New("parámetros de disponibilidad inválidos")
	ErrVariantNotFound   = errors.New("combinación talla/color no encontrada")
	ErrVariantInactive   = errors.New("variante no disponible")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// CheckAvailability reports whether cantidad units of the (talla, color)
// combination can be purchased from variants. Talla and color are trimmed
// and lowercased before comparison; the match is exact beyond that. On
// success the matched variant is returned unmodified. Read-only.
func CheckAvailability(variants []models.Variant, talla, color string, cantidad int) (*models.Variant, error) {
	if len(variants) == 0 {
		return nil, ErrInvalidInput
	}
	talla = models.NormalizeKey(talla)
	color = models.NormalizeKey(color)
	if talla == "" || color == "" || cantidad <= 0 {
		return nil, ErrInvalidInput
	}
	for i := range variants {
		v := &variants[i]
		if models.NormalizeKey(v.Talla) != talla || models.NormalizeKey(v.Color) != color {
			continue
		}
		// First match wins; duplicates are prevented by the product schema.
		if !v.Active() {
			return nil, ErrVariantInactive
		}
		if v.Stock < cantidad {
			return nil, ErrInsufficientStock
		}
		return v, nil
	}
	return nil, ErrVariantNotFound
}

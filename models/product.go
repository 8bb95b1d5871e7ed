package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tienda-api/apperr"
)

// MaxVariants limits how many talla/color combinations a product may carry.
const MaxVariants = 4

var tallaTipos = map[string]bool{
	"adulto": true,
	"joven":  true,
	"niño":   true,
	"niña":   true,
	"bebé":   true,
}

// Variant is a purchasable (talla, color) combination with its own stock.
// It has no identity outside its parent product.
type Variant struct {
	Id        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"index:idx_variant_combo,unique" json:"-"`
	Talla     string `gorm:"size:50;index:idx_variant_combo,unique" json:"talla"`
	Color     string `gorm:"size:50;index:idx_variant_combo,unique" json:"color"`
	ImageURL  string `gorm:"size:500" json:"imageUrl"`
	StorageID string `gorm:"size:255" json:"storageId"`
	Stock     int    `gorm:"not null;default:0" json:"stock"`
	// IsActive is a typed optional: nil means the flag was never set, which
	// counts as active.
	IsActive *bool `json:"isActive"`
}

// Active reports whether the variant is sellable from the flag alone.
func (v *Variant) Active() bool {
	return v.IsActive == nil || *v.IsActive
}

// ProductImage is a hosted image tied to a talla/color combination.
type ProductImage struct {
	Id        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `json:"-"`
	URL       string `gorm:"size:500;not null" json:"url"`
	StorageID string `gorm:"size:255" json:"storageId"`
	Talla     string `gorm:"size:50" json:"talla"`
	Color     string `gorm:"size:50" json:"color"`
}

type Product struct {
	Id           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Slug         string          `gorm:"uniqueIndex;size:255" json:"slug"`
	Description  string          `json:"description"`
	Precio       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"precio"`
	Categoria    string          `gorm:"size:100;index" json:"categoria"`
	Subcategoria string          `gorm:"size:100" json:"subcategoria"`
	TallaTipo    string          `gorm:"size:20" json:"tallaTipo"`
	Featured     bool            `gorm:"not null;default:false" json:"featured"`
	IsActive     bool            `gorm:"not null;default:true" json:"isActive"`
	// Stock applies only when the product has no variants.
	Stock    int            `gorm:"not null;default:0" json:"stock"`
	Images   []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Variants []Variant      `gorm:"constraint:OnDelete:CASCADE" json:"variants"`
	// StockTotal is derived on read, never stored.
	StockTotal int       `gorm:"-" json:"stockTotal"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NormalizeKey lowercases and trims a talla/color value so lookups and
// stored rows compare exactly.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize trims the free-text fields and canonicalizes every talla/color
// pair before validation or persistence.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Categoria = NormalizeKey(p.Categoria)
	p.Subcategoria = NormalizeKey(p.Subcategoria)
	p.TallaTipo = NormalizeKey(p.TallaTipo)
	for i := range p.Images {
		p.Images[i].Talla = NormalizeKey(p.Images[i].Talla)
		p.Images[i].Color = NormalizeKey(p.Images[i].Color)
	}
	for i := range p.Variants {
		p.Variants[i].Talla = NormalizeKey(p.Variants[i].Talla)
		p.Variants[i].Color = NormalizeKey(p.Variants[i].Color)
	}
}

// Validate checks the product schema rules. Call Normalize first.
func (p *Product) Validate() error {
	if len(p.Name) < 2 {
		return apperr.New(apperr.Validation, "el nombre del producto es obligatorio")
	}
	if p.Precio.IsNegative() {
		return apperr.New(apperr.Validation, "el precio no puede ser negativo")
	}
	if p.TallaTipo != "" && !tallaTipos[p.TallaTipo] {
		return apperr.Newf(apperr.Validation, "tallaTipo inválido: %q", p.TallaTipo)
	}
	if len(p.Images) == 0 {
		return apperr.New(apperr.Validation, "se requiere al menos una imagen")
	}
	seen := map[[2]string]bool{}
	for _, img := range p.Images {
		if img.URL == "" {
			return apperr.New(apperr.Validation, "cada imagen debe tener una url")
		}
		key := [2]string{img.Talla, img.Color}
		if seen[key] {
			return apperr.Newf(apperr.Validation, "imagen duplicada para talla %q color %q", img.Talla, img.Color)
		}
		seen[key] = true
	}
	if len(p.Variants) > MaxVariants {
		return apperr.Newf(apperr.Validation, "máximo %d variantes por producto", MaxVariants)
	}
	seen = map[[2]string]bool{}
	for _, v := range p.Variants {
		if v.Talla == "" || v.Color == "" {
			return apperr.New(apperr.Validation, "cada variante requiere talla y color")
		}
		if v.Stock < 0 {
			return apperr.New(apperr.Validation, "el stock de una variante no puede ser negativo")
		}
		key := [2]string{v.Talla, v.Color}
		if seen[key] {
			return apperr.Newf(apperr.Validation, "variante duplicada para talla %q color %q", v.Talla, v.Color)
		}
		seen[key] = true
	}
	if len(p.Variants) == 0 && p.Stock < 0 {
		return apperr.New(apperr.Validation, "el stock no puede ser negativo")
	}
	return nil
}

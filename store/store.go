// Package store exposes narrow persistence interfaces to the order and
// product workflows, plus a GORM/Postgres implementation. Services depend on
// the interfaces so tests can substitute in-memory fakes.
package store

import (
	"context"

	"tienda-api/models"
)

type ProductStore interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	// DecrementVariantStock atomically subtracts cantidad from the variant
	// matching (productID, talla, color) provided the variant is active and
	// holds at least cantidad units. It reports whether a row matched.
	// Talla and color must already be normalized.
	DecrementVariantStock(ctx context.Context, productID uint, talla, color string, cantidad int) (bool, error)
	// DecrementStock is the variant-less counterpart, guarded the same way
	// against the product's scalar stock.
	DecrementStock(ctx context.Context, productID uint, cantidad int) (bool, error)
	// DeactivateEmptyVariant flips the variant inactive if its stock has
	// reached zero or below.
	DeactivateEmptyVariant(ctx context.Context, productID uint, talla, color string) error
	SetProductActive(ctx context.Context, productID uint, active bool) error
	Save(ctx context.Context, p *models.Product) error
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindByCodigo(ctx context.Context, codigo string) (*models.Order, error)
	Save(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id uint) error
}

// Store bundles the collections and the transaction seam. Transaction runs
// fn against a Store bound to one database transaction; returning an error
// rolls everything back.
type Store interface {
	Products() ProductStore
	Orders() OrderStore
	Transaction(ctx context.Context, fn func(Store) error) error
}

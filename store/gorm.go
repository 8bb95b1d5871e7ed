package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tienda-api/apperr"
	"tienda-api/models"
)

type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps a gorm handle in the Store interface.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductStore { return (*gormProducts)(s) }
func (s *gormStore) Orders() OrderStore     { return (*gormOrders)(s) }

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

type gormProducts gormStore

func (s *gormProducts) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Preload("Variants").Preload("Images").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "producto %d no encontrado", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "error consultando producto")
	}
	return &p, nil
}

func (s *gormProducts) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Preload("Variants").Preload("Images").
		Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "producto %q no encontrado", slug)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "error consultando producto")
	}
	return &p, nil
}

// DecrementVariantStock is the compare-and-decrement that keeps concurrent
// checkouts from overselling: the stock guard lives in the WHERE clause, so
// the read and the write are one statement.
func (s *gormProducts) DecrementVariantStock(ctx context.Context, productID uint, talla, color string, cantidad int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Variant{}).
		Where("product_id = ? AND talla = ? AND color = ? AND (is_active IS NULL OR is_active = true) AND stock >= ?",
			productID, talla, color, cantidad).
		UpdateColumn("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return false, apperr.Wrap(res.Error, apperr.Internal, "error descontando stock de variante")
	}
	return res.RowsAffected > 0, nil
}

func (s *gormProducts) DecrementStock(ctx context.Context, productID uint, cantidad int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = true AND stock >= ?", productID, cantidad).
		UpdateColumn("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return false, apperr.Wrap(res.Error, apperr.Internal, "error descontando stock")
	}
	return res.RowsAffected > 0, nil
}

func (s *gormProducts) DeactivateEmptyVariant(ctx context.Context, productID uint, talla, color string) error {
	err := s.db.WithContext(ctx).Model(&models.Variant{}).
		Where("product_id = ? AND talla = ? AND color = ? AND stock <= 0", productID, talla, color).
		Update("is_active", false).Error
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "error desactivando variante")
	}
	return nil
}

func (s *gormProducts) SetProductActive(ctx context.Context, productID uint, active bool) error {
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("is_active", active).Error
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "error actualizando producto")
	}
	return nil
}

func (s *gormProducts) Save(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return apperr.Wrap(err, apperr.Internal, "error guardando producto")
	}
	return nil
}

type gormOrders gormStore

func (s *gormOrders) Create(ctx context.Context, o *models.Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return apperr.Wrap(err, apperr.Internal, "error creando pedido")
	}
	return nil
}

func (s *gormOrders) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "pedido %d no encontrado", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "error consultando pedido")
	}
	return &o, nil
}

func (s *gormOrders) FindByCodigo(ctx context.Context, codigo string) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("codigo = ?", codigo).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "pedido %q no encontrado", codigo)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "error consultando pedido")
	}
	return &o, nil
}

func (s *gormOrders) Save(ctx context.Context, o *models.Order) error {
	if err := s.db.WithContext(ctx).Save(o).Error; err != nil {
		return apperr.Wrap(err, apperr.Internal, "error guardando pedido")
	}
	return nil
}

// Delete removes the order and its items. Inventory is not restored.
func (s *gormOrders) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Select("Items").Delete(&models.Order{Id: id})
	if res.Error != nil {
		return apperr.Wrap(res.Error, apperr.Internal, "error eliminando pedido")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "pedido %d no encontrado", id)
	}
	return nil
}

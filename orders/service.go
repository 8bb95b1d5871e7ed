// Package orders implements checkout: intake validation, order creation with
// inventory reservation, and admin status transitions.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tienda-api/apperr"
	"tienda-api/inventory"
	"tienda-api/models"
	"tienda-api/notify"
	"tienda-api/store"
)

// Notifier is the customer side channel. Implementations never block the
// order flow and never return an error.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

// EventPublisher broadcasts order events for realtime consumers. It is an
// injected capability; a nil publisher disables broadcasting.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any)
}

// CacheInvalidator drops cached catalog entries after checkout mutates
// stock. Injected so this package never touches the cache client itself; nil
// disables it.
type CacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...uint)
}

type Service struct {
	store    store.Store
	notifier Notifier
	events   EventPublisher
	cache    CacheInvalidator
}

func NewService(st store.Store, notifier Notifier, events EventPublisher, cache CacheInvalidator) *Service {
	return &Service{store: st, notifier: notifier, events: events, cache: cache}
}

// Create runs the full checkout: validate the request shape, resolve every
// product and check availability (fail-fast, nothing written on any
// failure), then persist the order and decrement stock inside one
// transaction. A decrement that no longer matches (a concurrent checkout
// drained the variant first) rolls the whole order back with a Conflict.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Order, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	products := make(map[uint]*models.Product)
	for _, it := range req.Items {
		p := products[it.ProductID]
		if p == nil {
			var err error
			p, err = s.store.Products().FindByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			products[it.ProductID] = p
		}
		if err := checkItem(p, it); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		Codigo:        NewCodigo(),
		Total:         req.Total,
		NombreCliente: req.NombreCliente,
		Email:         req.Email,
		Telefono:      req.Telefono,
		Direccion:     req.Direccion,
		MetodoPago:    req.MetodoPago,
		Nota:          req.Nota,
		Factura:       req.Factura,
		Estado:        InitialEstado(req.MetodoPago),
	}
	for _, it := range req.Items {
		p := products[it.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Talla:     it.Talla,
			Color:     it.Color,
			Cantidad:  it.Cantidad,
			Nombre:    p.Name,
			Precio:    p.Precio,
		})
	}

	err := s.store.Transaction(ctx, func(st store.Store) error {
		if err := st.Orders().Create(ctx, order); err != nil {
			return err
		}
		for i := range order.Items {
			if err := reserveItem(ctx, st.Products(), &order.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Checkout changed stock and possibly active flags; cached catalog
	// entries for the touched products are stale now.
	if s.cache != nil {
		ids := make([]uint, 0, len(products))
		for id := range products {
			ids = append(ids, id)
		}
		s.cache.InvalidateProducts(ctx, ids...)
	}

	s.notifyOrder(ctx, order, "nuevo")
	if s.events != nil {
		s.events.Publish(ctx, "order_created", order)
	}
	return order, nil
}

// checkItem is the read-only availability pass over a product snapshot.
func checkItem(p *models.Product, it ItemRequest) error {
	if len(p.Variants) == 0 {
		if !p.IsActive {
			return apperr.Newf(apperr.Conflict, "%s no está disponible", p.Name)
		}
		if p.Stock < it.Cantidad {
			return apperr.Newf(apperr.Conflict, "stock insuficiente para %s", p.Name)
		}
		return nil
	}
	if _, err := inventory.CheckAvailability(p.Variants, it.Talla, it.Color, it.Cantidad); err != nil {
		return itemError(p, it, err)
	}
	return nil
}

func itemError(p *models.Product, it ItemRequest, err error) error {
	kind := apperr.Conflict
	if errors.Is(err, inventory.ErrInvalidInput) || errors.Is(err, inventory.ErrVariantNotFound) {
		kind = apperr.Validation
	}
	return apperr.Wrap(err, kind,
		fmt.Sprintf("artículo %s (talla %s, color %s)", p.Name, it.Talla, it.Color))
}

// reserveItem applies one line's stock decrement inside the transaction and
// keeps the exhaustion flags consistent.
func reserveItem(ctx context.Context, ps store.ProductStore, it *models.OrderItem) error {
	p, err := ps.FindByID(ctx, it.ProductID)
	if err != nil {
		return err
	}
	if len(p.Variants) == 0 {
		ok, err := ps.DecrementStock(ctx, p.Id, it.Cantidad)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Newf(apperr.Conflict, "stock insuficiente para %s", p.Name)
		}
		// The exhaustion decision must come from the stored value after the
		// decrement, never from arithmetic on the earlier snapshot: a
		// concurrent checkout may have drained units in between.
		fresh, err := ps.FindByID(ctx, p.Id)
		if err != nil {
			return err
		}
		if fresh.Stock <= 0 {
			return ps.SetProductActive(ctx, p.Id, false)
		}
		return nil
	}

	ok, err := ps.DecrementVariantStock(ctx, p.Id, it.Talla, it.Color, it.Cantidad)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.Conflict,
			"stock insuficiente para %s (talla %s, color %s)", p.Name, it.Talla, it.Color)
	}
	if err := ps.DeactivateEmptyVariant(ctx, p.Id, it.Talla, it.Color); err != nil {
		return err
	}
	// Re-read inside the transaction for the exhaustion check.
	fresh, err := ps.FindByID(ctx, p.Id)
	if err != nil {
		return err
	}
	if inventory.IsExhausted(fresh.Variants) {
		return ps.SetProductActive(ctx, p.Id, false)
	}
	return nil
}

// SetStatus moves an order to any state of the closed set. Transitions are
// unconditional; the customer is re-notified on success.
func (s *Service) SetStatus(ctx context.Context, id uint, estado models.Estado) (*models.Order, error) {
	if !estado.Valid() {
		return nil, apperr.Newf(apperr.Validation, "estado inválido: %q", estado)
	}
	o, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Estado = estado
	if err := s.store.Orders().Save(ctx, o); err != nil {
		return nil, err
	}
	s.notifyOrder(ctx, o, "estado")
	if s.events != nil {
		s.events.Publish(ctx, "order_status_changed", map[string]any{
			"id": o.Id, "codigo": o.Codigo, "estado": o.Estado,
		})
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	return s.store.Orders().FindByID(ctx, id)
}

func (s *Service) GetByCodigo(ctx context.Context, codigo string) (*models.Order, error) {
	return s.store.Orders().FindByCodigo(ctx, strings.ToUpper(strings.TrimSpace(codigo)))
}

// Delete removes an order. Inventory already consumed by the order is not
// restored.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.store.Orders().Delete(ctx, id)
}

func (s *Service) notifyOrder(ctx context.Context, o *models.Order, tipo string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notify.Notification{
		NombreCliente: o.NombreCliente,
		Telefono:      o.Telefono,
		Email:         o.Email,
		Codigo:        o.Codigo,
		Estado:        o.Estado,
		Tipo:          tipo,
	})
}

// NewCodigo generates the human-shareable tracking code.
func NewCodigo() string {
	return "PED-" + strings.ToUpper(uuid.NewString()[:8])
}

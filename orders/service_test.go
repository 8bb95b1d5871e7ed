package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-api/apperr"
	"tienda-api/models"
	"tienda-api/notify"
	"tienda-api/store"
)

// ---- in-memory store fake ----

type fakeStore struct {
	products     map[uint]*models.Product
	orders       map[uint]*models.Order
	nextOrderID  uint
	orderCreates int
}

func newFakeStore(products ...*models.Product) *fakeStore {
	fs := &fakeStore{
		products: map[uint]*models.Product{},
		orders:   map[uint]*models.Order{},
	}
	for _, p := range products {
		fs.products[p.Id] = p
	}
	return fs
}

func (f *fakeStore) Products() store.ProductStore { return (*fakeProducts)(f) }
func (f *fakeStore) Orders() store.OrderStore     { return (*fakeOrders)(f) }

// Transaction snapshots state and restores it when fn fails, mirroring a
// rollback.
func (f *fakeStore) Transaction(_ context.Context, fn func(store.Store) error) error {
	savedProducts := map[uint]*models.Product{}
	for id, p := range f.products {
		savedProducts[id] = cloneProduct(p)
	}
	savedOrders := map[uint]*models.Order{}
	for id, o := range f.orders {
		c := *o
		savedOrders[id] = &c
	}
	if err := fn(f); err != nil {
		f.products = savedProducts
		f.orders = savedOrders
		return err
	}
	return nil
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Variants = make([]models.Variant, len(p.Variants))
	for i, v := range p.Variants {
		c.Variants[i] = v
		if v.IsActive != nil {
			b := *v.IsActive
			c.Variants[i].IsActive = &b
		}
	}
	return &c
}

type fakeProducts fakeStore

func (f *fakeProducts) FindByID(_ context.Context, id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "producto %d no encontrado", id)
	}
	return cloneProduct(p), nil
}

func (f *fakeProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, apperr.Newf(apperr.NotFound, "producto %q no encontrado", slug)
}

func (f *fakeProducts) DecrementVariantStock(_ context.Context, productID uint, talla, color string, cantidad int) (bool, error) {
	p, ok := f.products[productID]
	if !ok {
		return false, nil
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Talla == talla && v.Color == color && v.Active() && v.Stock >= cantidad {
			v.Stock -= cantidad
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, productID uint, cantidad int) (bool, error) {
	p, ok := f.products[productID]
	if !ok || !p.IsActive || p.Stock < cantidad {
		return false, nil
	}
	p.Stock -= cantidad
	return true, nil
}

func (f *fakeProducts) DeactivateEmptyVariant(_ context.Context, productID uint, talla, color string) error {
	p, ok := f.products[productID]
	if !ok {
		return nil
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.Talla == talla && v.Color == color && v.Stock <= 0 {
			off := false
			v.IsActive = &off
		}
	}
	return nil
}

func (f *fakeProducts) SetProductActive(_ context.Context, productID uint, active bool) error {
	if p, ok := f.products[productID]; ok {
		p.IsActive = active
	}
	return nil
}

func (f *fakeProducts) Save(_ context.Context, p *models.Product) error {
	f.products[p.Id] = cloneProduct(p)
	return nil
}

type fakeOrders fakeStore

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.orderCreates++
	f.nextOrderID++
	o.Id = f.nextOrderID
	c := *o
	f.orders[o.Id] = &c
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id uint) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "pedido %d no encontrado", id)
	}
	c := *o
	return &c, nil
}

func (f *fakeOrders) FindByCodigo(_ context.Context, codigo string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.Codigo == codigo {
			c := *o
			return &c, nil
		}
	}
	return nil, apperr.Newf(apperr.NotFound, "pedido %q no encontrado", codigo)
}

func (f *fakeOrders) Save(_ context.Context, o *models.Order) error {
	c := *o
	f.orders[o.Id] = &c
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id uint) error {
	if _, ok := f.orders[id]; !ok {
		return apperr.Newf(apperr.NotFound, "pedido %d no encontrado", id)
	}
	delete(f.orders, id)
	return nil
}

// ---- collaborator fakes ----

type fakeNotifier struct {
	calls []notify.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n notify.Notification) {
	f.calls = append(f.calls, n)
}

type fakeEvents struct {
	events []string
}

func (f *fakeEvents) Publish(_ context.Context, event string, _ any) {
	f.events = append(f.events, event)
}

type fakeCache struct {
	invalidated [][]uint
}

func (f *fakeCache) InvalidateProducts(_ context.Context, ids ...uint) {
	f.invalidated = append(f.invalidated, ids)
}

// racingStore drains one extra unit on every scalar decrement, standing in
// for a second checkout committing between this order's decrement and its
// exhaustion check.
type racingStore struct {
	*fakeStore
}

func (r racingStore) Products() store.ProductStore {
	return racingProducts{ProductStore: r.fakeStore.Products(), fs: r.fakeStore}
}

func (r racingStore) Transaction(ctx context.Context, fn func(store.Store) error) error {
	return r.fakeStore.Transaction(ctx, func(store.Store) error { return fn(r) })
}

type racingProducts struct {
	store.ProductStore
	fs *fakeStore
}

func (r racingProducts) DecrementStock(ctx context.Context, productID uint, cantidad int) (bool, error) {
	ok, err := r.ProductStore.DecrementStock(ctx, productID, cantidad)
	if ok && err == nil {
		r.fs.products[productID].Stock--
	}
	return ok, err
}

// ---- fixtures ----

func on() *bool  { b := true; return &b }
func off() *bool { b := false; return &b }

func camiseta() *models.Product {
	return &models.Product{
		Id:       1,
		Name:     "Camiseta básica",
		Slug:     "camiseta-basica",
		Precio:   decimal.NewFromInt(12),
		IsActive: true,
		Variants: []models.Variant{
			{Talla: "m", Color: "negro", Stock: 10, IsActive: on()},
			{Talla: "l", Color: "blanco", Stock: 1, IsActive: on()},
			{Talla: "s", Color: "rojo", Stock: 5, IsActive: off()},
		},
	}
}

func gorra() *models.Product {
	return &models.Product{
		Id:       2,
		Name:     "Gorra",
		Slug:     "gorra",
		Precio:   decimal.NewFromInt(8),
		IsActive: true,
		Stock:    3, // no variants
	}
}

func newService(fs *fakeStore) (*Service, *fakeNotifier, *fakeEvents) {
	n := &fakeNotifier{}
	ev := &fakeEvents{}
	return NewService(fs, n, ev, &fakeCache{}), n, ev
}

func orderRequest(items ...ItemRequest) *CreateRequest {
	return &CreateRequest{
		Items:         items,
		Total:         decimal.NewFromInt(24),
		NombreCliente: "Ana Pérez",
		Email:         "ana@example.com",
		Telefono:      "0999999999",
		Direccion:     "Av. Siempre Viva 123",
	}
}

// ---- tests ----

func TestCreateRejectsEmptyCartWithoutWriting(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, notifier, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Zero(t, fs.orderCreates, "nothing may be persisted")
	assert.Empty(t, notifier.calls)
}

func TestCreateRejectsBeforePersistenceOnInsufficientStock(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "l", Color: "blanco", Cantidad: 2},
	))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Zero(t, fs.orderCreates, "order store create must never run")
	assert.Equal(t, 1, fs.products[1].Variants[1].Stock, "stock untouched")
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 99, Talla: "m", Color: "negro", Cantidad: 1},
	))
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Zero(t, fs.orderCreates)
}

func TestCreateRejectsInactiveVariant(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "s", Color: "rojo", Cantidad: 1},
	))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestCreateRejectsUnknownCombination(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "xl", Color: "azul", Cantidad: 1},
	))
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCreatePersistsOrderAndDecrementsStock(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, notifier, events := newService(fs)

	o, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: " M ", Color: "NEGRO", Cantidad: 2},
	))
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.NotZero(t, o.Id)
	assert.NotEmpty(t, o.Codigo)
	assert.Equal(t, 8, fs.products[1].Variants[0].Stock)
	assert.True(t, fs.products[1].IsActive)

	// Line item snapshots name and price from the product.
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Camiseta básica", o.Items[0].Nombre)
	assert.True(t, decimal.NewFromInt(12).Equal(o.Items[0].Precio))
	assert.Equal(t, "m", o.Items[0].Talla)
	assert.Equal(t, "negro", o.Items[0].Color)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "nuevo", notifier.calls[0].Tipo)
	assert.Equal(t, o.Codigo, notifier.calls[0].Codigo)
	assert.Equal(t, []string{"order_created"}, events.events)
}

func TestCreateEstadoFollowsMetodoPago(t *testing.T) {
	tests := []struct {
		metodo string
		want   models.Estado
	}{
		{"transferencia", models.EstadoPendiente},
		{"tarjeta", models.EstadoPagado},
		{"", models.EstadoPagado},
	}
	for _, tt := range tests {
		t.Run("metodo="+tt.metodo, func(t *testing.T) {
			fs := newFakeStore(camiseta())
			svc, _, _ := newService(fs)
			req := orderRequest(ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 1})
			req.MetodoPago = tt.metodo
			o, err := svc.Create(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Estado)
		})
	}
}

func TestCreateLastUnitExhaustsVariantAndProduct(t *testing.T) {
	p := &models.Product{
		Id:       1,
		Name:     "Sudadera",
		Precio:   decimal.NewFromInt(30),
		IsActive: true,
		Variants: []models.Variant{
			{Talla: "m", Color: "gris", Stock: 1, IsActive: on()},
			{Talla: "l", Color: "gris", Stock: 0, IsActive: on()},
		},
	}
	fs := newFakeStore(p)
	svc, _, _ := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "gris", Cantidad: 1},
	))
	require.NoError(t, err)

	got := fs.products[1]
	assert.Equal(t, 0, got.Variants[0].Stock)
	assert.False(t, got.Variants[0].Active(), "drained variant flips inactive")
	assert.False(t, got.IsActive, "product flips inactive once every variant is exhausted")
}

func TestCreateSimpleProductDecrementAndExhaustion(t *testing.T) {
	fs := newFakeStore(gorra())
	svc, _, _ := newService(fs)

	o, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 2, Cantidad: 3},
	))
	require.NoError(t, err)
	assert.Equal(t, 0, fs.products[2].Stock)
	assert.False(t, fs.products[2].IsActive)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Gorra", o.Items[0].Nombre)
}

func TestCreateExhaustionUsesStoredStockAfterConcurrentDrain(t *testing.T) {
	// A parallel checkout drains the remaining unit right after this order's
	// decrement. The snapshot read before the decrement still says two units,
	// so the exhaustion flag must come from the stored value, not from
	// arithmetic on the snapshot.
	p := gorra()
	p.Stock = 2
	fs := newFakeStore(p)
	svc := NewService(racingStore{fs}, &fakeNotifier{}, &fakeEvents{}, &fakeCache{})

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 2, Cantidad: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, 0, fs.products[2].Stock)
	assert.False(t, fs.products[2].IsActive, "product must flip inactive once stored stock hits zero")
}

func TestCreateInvalidatesTouchedProductCacheEntries(t *testing.T) {
	fs := newFakeStore(camiseta(), gorra())
	cache := &fakeCache{}
	svc := NewService(fs, &fakeNotifier{}, &fakeEvents{}, cache)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 1},
		ItemRequest{ProductID: 2, Cantidad: 1},
	))
	require.NoError(t, err)
	require.Len(t, cache.invalidated, 1)
	assert.ElementsMatch(t, []uint{1, 2}, cache.invalidated[0])
}

func TestCreateFailureLeavesCacheUntouched(t *testing.T) {
	fs := newFakeStore(camiseta())
	cache := &fakeCache{}
	svc := NewService(fs, &fakeNotifier{}, &fakeEvents{}, cache)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "l", Color: "blanco", Cantidad: 2},
	))
	require.Error(t, err)
	assert.Empty(t, cache.invalidated)
}

func TestCreateRacedDecrementRollsBackWholeOrder(t *testing.T) {
	// Both lines pass the read-only check against the same snapshot (2 ≤ 3),
	// but reservations run sequentially: the first drains stock to 1, the
	// second cannot match, and the transaction must roll back order and
	// stock together.
	p := &models.Product{
		Id:       1,
		Name:     "Camiseta básica",
		Precio:   decimal.NewFromInt(12),
		IsActive: true,
		Variants: []models.Variant{
			{Talla: "m", Color: "negro", Stock: 3, IsActive: on()},
		},
	}
	fs := newFakeStore(p)
	svc, notifier, events := newService(fs)

	_, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 2},
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 2},
	))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Empty(t, fs.orders, "order must not survive the rollback")
	assert.Equal(t, 3, fs.products[1].Variants[0].Stock, "stock must be restored")
	assert.Empty(t, notifier.calls)
	assert.Empty(t, events.events)
}

func TestSetStatusTransitionsAndNotifies(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, notifier, _ := newService(fs)

	o, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 1},
	))
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)

	updated, err := svc.SetStatus(context.Background(), o.Id, models.EstadoEnviado)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoEnviado, updated.Estado)

	persisted, err := svc.Get(context.Background(), o.Id)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoEnviado, persisted.Estado)

	require.Len(t, notifier.calls, 2)
	assert.Equal(t, "estado", notifier.calls[1].Tipo)
	assert.Equal(t, models.EstadoEnviado, notifier.calls[1].Estado)
}

func TestSetStatusRejectsUnknownEstado(t *testing.T) {
	fs := newFakeStore()
	svc, notifier, _ := newService(fs)

	_, err := svc.SetStatus(context.Background(), 1, "empacado")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Empty(t, notifier.calls)
}

func TestSetStatusUnknownOrder(t *testing.T) {
	fs := newFakeStore()
	svc, notifier, _ := newService(fs)

	_, err := svc.SetStatus(context.Background(), 42, models.EstadoCancelado)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Empty(t, notifier.calls)
}

func TestDeleteDoesNotRestoreInventory(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	o, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 2},
	))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), o.Id))
	assert.Empty(t, fs.orders)
	assert.Equal(t, 8, fs.products[1].Variants[0].Stock, "deletion leaves stock as-is")

	err = svc.Delete(context.Background(), o.Id)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestGetByCodigo(t *testing.T) {
	fs := newFakeStore(camiseta())
	svc, _, _ := newService(fs)

	o, err := svc.Create(context.Background(), orderRequest(
		ItemRequest{ProductID: 1, Talla: "m", Color: "negro", Cantidad: 1},
	))
	require.NoError(t, err)

	got, err := svc.GetByCodigo(context.Background(), "  "+o.Codigo+" ")
	require.NoError(t, err)
	assert.Equal(t, o.Id, got.Id)
}

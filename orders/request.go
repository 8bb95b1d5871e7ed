package orders

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tienda-api/apperr"
	"tienda-api/models"
)

// ItemRequest is one cart line as submitted at checkout.
type ItemRequest struct {
	ProductID uint   `json:"productId"`
	Talla     string `json:"talla"`
	Color     string `json:"color"`
	Cantidad  int    `json:"cantidad"`
}

// CreateRequest is the checkout payload.
type CreateRequest struct {
	Items         []ItemRequest   `json:"items"`
	Total         decimal.Decimal `json:"total"`
	NombreCliente string          `json:"nombreCliente"`
	Email         string          `json:"email"`
	Telefono      string          `json:"telefono"`
	Direccion     string          `json:"direccion"`
	MetodoPago    string          `json:"metodoPago"`
	Nota          string          `json:"nota"`
	Factura       string          `json:"factura"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (r *CreateRequest) normalize() {
	r.NombreCliente = strings.TrimSpace(r.NombreCliente)
	r.Email = strings.TrimSpace(r.Email)
	r.Telefono = strings.TrimSpace(r.Telefono)
	r.Direccion = strings.TrimSpace(r.Direccion)
	r.MetodoPago = models.NormalizeKey(r.MetodoPago)
	r.Nota = strings.TrimSpace(r.Nota)
	for i := range r.Items {
		r.Items[i].Talla = models.NormalizeKey(r.Items[i].Talla)
		r.Items[i].Color = models.NormalizeKey(r.Items[i].Color)
	}
}

// Validate applies the intake rules in order, stopping at the first failure.
// Product existence and availability are checked later by the service; this
// gate is purely about request shape.
func (r *CreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return apperr.New(apperr.Validation, "el pedido no tiene artículos")
	}
	if len(r.NombreCliente) < 2 {
		return apperr.New(apperr.Validation, "nombre del cliente inválido")
	}
	if !r.Total.IsPositive() {
		return apperr.New(apperr.Validation, "el total debe ser mayor a cero")
	}
	if !emailPattern.MatchString(r.Email) {
		return apperr.New(apperr.Validation, "email inválido")
	}
	if len(r.Telefono) < 6 {
		return apperr.New(apperr.Validation, "teléfono inválido")
	}
	for _, it := range r.Items {
		if it.ProductID == 0 {
			return apperr.New(apperr.Validation, "artículo sin producto")
		}
		if it.Cantidad <= 0 {
			return apperr.New(apperr.Validation, "la cantidad debe ser mayor a cero")
		}
	}
	return nil
}

// Payment methods that leave the order awaiting confirmation.
var deferredMethods = map[string]bool{
	"transferencia": true,
}

// InitialEstado decides the starting state of an order: deferred payment
// methods begin pendiente, everything else (card, PayPal, unset) is already
// settled and begins pagado.
func InitialEstado(metodoPago string) models.Estado {
	if deferredMethods[models.NormalizeKey(metodoPago)] {
		return models.EstadoPendiente
	}
	return models.EstadoPagado
}

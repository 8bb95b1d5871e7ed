package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado is the canonical closed set of order states. Display synonyms
// (preparando, entregado) belong to the presentation layer, not here.
type Estado string

const (
	EstadoPendiente Estado = "pendiente"
	EstadoPagado    Estado = "pagado"
	EstadoEnProceso Estado = "en_proceso"
	EstadoEnviado   Estado = "enviado"
	EstadoCancelado Estado = "cancelado"
)

var estados = map[Estado]bool{
	EstadoPendiente: true,
	EstadoPagado:    true,
	EstadoEnProceso: true,
	EstadoEnviado:   true,
	EstadoCancelado: true,
}

// Valid reports whether e belongs to the closed estado set.
func (e Estado) Valid() bool { return estados[e] }

// OrderItem is a line of an order, snapshotting name and price at purchase
// time so later product edits don't rewrite history.
type OrderItem struct {
	Id        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index" json:"-"`
	ProductID uint            `gorm:"not null" json:"productId"`
	Talla     string          `gorm:"size:50" json:"talla"`
	Color     string          `gorm:"size:50" json:"color"`
	Cantidad  int             `gorm:"not null" json:"cantidad"`
	Nombre    string          `gorm:"size:255" json:"nombre"`
	Precio    decimal.Decimal `gorm:"type:decimal(10,2)" json:"precio"`
}

type Order struct {
	Id uint `gorm:"primaryKey" json:"id"`
	// Codigo is the human-shareable tracking code.
	Codigo        string          `gorm:"uniqueIndex;size:20" json:"codigo"`
	Items         []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	NombreCliente string          `gorm:"size:255;not null" json:"nombreCliente"`
	Email         string          `gorm:"size:255" json:"email"`
	Telefono      string          `gorm:"size:50" json:"telefono"`
	Direccion     string          `json:"direccion"`
	MetodoPago    string          `gorm:"size:50" json:"metodoPago"`
	Nota          string          `json:"nota"`
	Factura       string          `json:"factura"`
	Estado        Estado          `gorm:"size:20;not null;default:'pendiente'" json:"estado"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

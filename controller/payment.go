package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tienda-api/apperr"
	"tienda-api/models"
	"tienda-api/payment"
)

// Pagos is the configured payment gateway; nil when PayPal credentials are
// absent.
var Pagos payment.Client

func paymentsEnabled(c *gin.Context) bool {
	if Pagos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "pagos en línea no disponibles"})
		return false
	}
	return true
}

// CreatePayPalOrder opens a payment order for the given total.
func CreatePayPalOrder(c *gin.Context) {
	if !paymentsEnabled(c) {
		return
	}
	var input struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}
	res, err := Pagos.CreateOrder(c.Request.Context(), input.Total)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": res})
}

// CapturePayPalOrder settles a payment order. When the caller links it to a
// pedido, a completed capture also marks that pedido pagado.
func CapturePayPalOrder(c *gin.Context) {
	if !paymentsEnabled(c) {
		return
	}
	var input struct {
		OrderID  string `json:"orderId"`
		PedidoID uint   `json:"pedidoId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "cuerpo de la petición inválido"))
		return
	}

	res, err := Pagos.CaptureOrder(c.Request.Context(), input.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	if input.PedidoID != 0 && strings.EqualFold(res.Status, "COMPLETED") {
		if _, err := Orders.SetStatus(c.Request.Context(), input.PedidoID, models.EstadoPagado); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

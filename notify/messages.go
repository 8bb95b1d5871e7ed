package notify

import (
	"fmt"

	"tienda-api/models"
)

// Display texts per estado. The canonical states live in models; the
// customer-facing wording (preparando, entregado) only exists here.
var estadoMensajes = map[models.Estado]string{
	models.EstadoPendiente: "hemos recibido tu pedido y está pendiente de pago.",
	models.EstadoPagado:    "tu pago fue confirmado. ¡Gracias por tu compra!",
	models.EstadoEnProceso: "estamos preparando tu pedido.",
	models.EstadoEnviado:   "tu pedido va en camino.",
	models.EstadoCancelado: "tu pedido fue cancelado. Escríbenos si tienes dudas.",
}

const mensajeDefault = "tu pedido fue actualizado."

// MessageFor builds the customer-facing text for a notification.
func MessageFor(n Notification) string {
	msg, ok := estadoMensajes[n.Estado]
	if !ok {
		msg = mensajeDefault
	}
	nombre := n.NombreCliente
	if nombre == "" {
		nombre = "Hola"
	}
	if n.Codigo != "" {
		return fmt.Sprintf("%s, %s (pedido %s)", nombre, msg, n.Codigo)
	}
	return fmt.Sprintf("%s, %s", nombre, msg)
}

func emailBody(n Notification, text string) string {
	return fmt.Sprintf("<p>%s</p><p>Estado actual: <strong>%s</strong></p>", text, n.Estado)
}

// Package notify is the fire-and-forget side channel that tells customers
// about their order. Failures are logged and swallowed; nothing here can make
// an order operation fail.
package notify

import (
	"context"
	"log"
	"time"

	"tienda-api/models"
)

type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// Notification carries everything the dispatcher needs; it keeps no
// reference to the order itself.
type Notification struct {
	NombreCliente string
	Telefono      string
	Email         string
	Codigo        string
	Estado        models.Estado
	// Tipo distinguishes the first confirmation ("nuevo") from later status
	// changes ("estado").
	Tipo string
}

type Dispatcher struct {
	msg  MessageSender
	mail EmailSender
}

func NewDispatcher(msg MessageSender, mail EmailSender) *Dispatcher {
	return &Dispatcher{msg: msg, mail: mail}
}

// Notify attempts each configured channel without blocking the caller. The
// two channels are independent: a missing phone does not stop the email and
// vice versa.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	go d.dispatch(n)
}

func (d *Dispatcher) dispatch(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	text := MessageFor(n)
	if n.Telefono != "" && d.msg != nil {
		if err := d.msg.SendMessage(ctx, n.Telefono, text); err != nil {
			log.Printf("notify: fallo enviando mensaje a %s: %v", n.Telefono, err)
		}
	}
	if n.Email != "" && d.mail != nil {
		subject := "Actualización de tu pedido"
		if n.Tipo == "nuevo" {
			subject = "Hemos recibido tu pedido"
		}
		if err := d.mail.SendEmail(ctx, n.Email, subject, emailBody(n, text)); err != nil {
			log.Printf("notify: fallo enviando correo a %s: %v", n.Email, err)
		}
	}
}

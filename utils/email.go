package utils

import (
	"context"
	"fmt"
	"log"
	"os"

	"tienda-api/notify"
)

// Mailer is the email channel for account mails; main wires the same sender
// the order notifier uses. Nil falls back to logging.
var Mailer notify.EmailSender

// SendPasswordResetEmail delivers the reset link for an admin account.
func SendPasswordResetEmail(email, token string) error {
	base := os.Getenv("FRONTEND_ORIGIN")
	if base == "" {
		base = "http://localhost:8080"
	}
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", base, token)

	if Mailer == nil {
		log.Printf("email: [simulado] reset de contraseña para %s: %s", email, resetLink)
		return nil
	}
	body := fmt.Sprintf("<p>Para restablecer tu contraseña haz clic aquí: <a href=%q>%s</a></p>", resetLink, resetLink)
	return Mailer.SendEmail(context.Background(), email, "Restablece tu contraseña", body)
}

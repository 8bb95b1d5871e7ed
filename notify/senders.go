package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"time"
)

// SendersFromEnv wires the real channels when their env vars are present and
// falls back to log-only senders otherwise, so a bare dev setup still shows
// what would have been sent.
func SendersFromEnv() (MessageSender, EmailSender) {
	var msg MessageSender = &logMessageSender{}
	if url := os.Getenv("MSG_API_URL"); url != "" {
		msg = &httpMessageSender{
			url:    url,
			token:  os.Getenv("MSG_API_TOKEN"),
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	var mail EmailSender = &logEmailSender{}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		mail = &smtpEmailSender{
			host: host,
			port: os.Getenv("SMTP_PORT"),
			user: os.Getenv("SMTP_USER"),
			pass: os.Getenv("SMTP_PASSWORD"),
			from: os.Getenv("SMTP_FROM"),
		}
	}
	return msg, mail
}

// httpMessageSender posts to a WhatsApp-style messaging API.
type httpMessageSender struct {
	url    string
	token  string
	client *http.Client
}

func (s *httpMessageSender) SendMessage(ctx context.Context, phone, text string) error {
	body, err := json.Marshal(map[string]string{"phone": phone, "message": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("messaging API respondió %s", resp.Status)
	}
	return nil
}

type smtpEmailSender struct {
	host, port, user, pass, from string
}

func (s *smtpEmailSender) SendEmail(_ context.Context, to, subject, html string) error {
	addr := s.host + ":" + s.port
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + html + "\r\n")
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

// Log-only fallbacks for local development.

type logMessageSender struct{}

func (s *logMessageSender) SendMessage(_ context.Context, phone, text string) error {
	log.Printf("notify: [mensaje simulado] para %s: %s", phone, text)
	return nil
}

type logEmailSender struct{}

func (s *logEmailSender) SendEmail(_ context.Context, to, subject, _ string) error {
	log.Printf("notify: [correo simulado] para %s: %s", to, subject)
	return nil
}

// Package payment wraps the PayPal checkout API behind a narrow interface.
// The core never inspects anything beyond the returned id and status.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tienda-api/apperr"
)

type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Client interface {
	CreateOrder(ctx context.Context, total decimal.Decimal) (*Result, error)
	CaptureOrder(ctx context.Context, id string) (*Result, error)
}

type PayPal struct {
	base     string
	clientID string
	secret   string
	currency string
	http     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewPayPalFromEnv reads PAYPAL_CLIENT_ID, PAYPAL_SECRET, PAYPAL_MODE
// (sandbox|live) and PAYPAL_CURRENCY. Returns nil when credentials are
// missing so callers can disable the endpoints.
func NewPayPalFromEnv() *PayPal {
	id := os.Getenv("PAYPAL_CLIENT_ID")
	secret := os.Getenv("PAYPAL_SECRET")
	if id == "" || secret == "" {
		return nil
	}
	base := "https://api-m.sandbox.paypal.com"
	if os.Getenv("PAYPAL_MODE") == "live" {
		base = "https://api-m.paypal.com"
	}
	currency := os.Getenv("PAYPAL_CURRENCY")
	if currency == "" {
		currency = "USD"
	}
	return &PayPal{
		base:     base,
		clientID: id,
		secret:   secret,
		currency: currency,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Before(p.tokenExp) {
		return p.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.base+"/v1/oauth2/token", bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "no se pudo contactar a PayPal")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Newf(apperr.Internal, "PayPal OAuth respondió %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "respuesta OAuth inválida")
	}
	p.token = body.AccessToken
	// Renew a minute early.
	p.tokenExp = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return p.token, nil
}

func (p *PayPal) CreateOrder(ctx context.Context, total decimal.Decimal) (*Result, error) {
	if !total.IsPositive() {
		return nil, apperr.New(apperr.Validation, "el monto debe ser mayor a cero")
	}
	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount": map[string]string{
				"currency_code": p.currency,
				"value":         total.StringFixed(2),
			},
		}},
	}
	return p.post(ctx, "/v2/checkout/orders", payload)
}

func (p *PayPal) CaptureOrder(ctx context.Context, id string) (*Result, error) {
	if id == "" {
		return nil, apperr.New(apperr.Validation, "falta el id de la orden de pago")
	}
	return p.post(ctx, fmt.Sprintf("/v2/checkout/orders/%s/capture", id), struct{}{})
}

func (p *PayPal) post(ctx context.Context, path string, payload any) (*Result, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "error serializando petición")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "no se pudo contactar a PayPal")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, apperr.Newf(apperr.Internal, "PayPal respondió %s", resp.Status)
	}
	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "respuesta de PayPal inválida")
	}
	return &res, nil
}

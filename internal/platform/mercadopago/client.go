package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/metrics"
	"github.com/toylink/donations/pkg/tool"
)

const (
	DefaultBaseURL = "https://api.mercadopago.com"
	DefaultTimeout = 10 * time.Second

	pixPaymentMethodID = "pix"
	taxIDTypeCPF       = "CPF"
)

var (
	// ErrPaymentNotFound is returned when the provider has no payment with the given id.
	ErrPaymentNotFound = errors.New("mercadopago: payment not found")
	ErrMissingToken    = errors.New("mercadopago: access token is not configured")
)

// Client is the provider surface used by donation intake and reconciliation.
type Client interface {
	CreatePixCharge(ctx context.Context, req *PixChargeRequest) (*PixCharge, error)
	GetPaymentInfo(ctx context.Context, providerPaymentID string) (*PaymentInfo, error)
}

type Options struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// HTTPClient talks to the Mercado Pago REST API.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(opts Options) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   opts.Timeout,
		}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.AccessToken,
		http:    hc,
	}
}

func NewFromConfig(cfg *config.Config) Client {
	return NewClient(Options{
		BaseURL:     cfg.MercadoPago.BaseURL,
		AccessToken: cfg.MercadoPago.AccessToken,
		Timeout:     cfg.MercadoPago.Timeout,
	})
}

// CreatePixCharge opens a PIX payment and returns its id and QR data.
func (c *HTTPClient) CreatePixCharge(ctx context.Context, req *PixChargeRequest) (*PixCharge, error) {
	if req == nil {
		return nil, errors.New("mercadopago: nil charge request")
	}
	defer metrics.ObserveProcess("mercadopago", "create_pix_charge", time.Now())

	body := createPaymentBody{
		TransactionAmount: json.Number(req.Amount.StringFixed(2)),
		Description:       req.Description,
		PaymentMethodID:   pixPaymentMethodID,
		Payer: payer{
			Email:          req.PayerEmail,
			Identification: identification{Type: taxIDTypeCPF, Number: req.PayerTaxID},
		},
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("external.service", "mercadopago"),
		attribute.String("payment.method", pixPaymentMethodID),
	)

	var res paymentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payments", body, &res); err != nil {
		return nil, err
	}
	if res.ID.String() == "" {
		return nil, errors.New("mercadopago: response has no payment id")
	}
	td := res.PointOfInteraction.TransactionData
	return &PixCharge{
		ID:                res.ID.String(),
		RedirectURL:       td.TicketURL,
		QRCodeText:        td.QRCode,
		QRCodeImageBase64: td.QRCodeBase64,
	}, nil
}

// GetPaymentInfo fetches the current provider state of a payment.
func (c *HTTPClient) GetPaymentInfo(ctx context.Context, providerPaymentID string) (*PaymentInfo, error) {
	if providerPaymentID == "" {
		return nil, ErrPaymentNotFound
	}
	defer metrics.ObserveProcess("mercadopago", "get_payment", time.Now())

	var res paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(providerPaymentID), nil, &res); err != nil {
		return nil, err
	}
	id := res.ID.String()
	if id == "" {
		id = providerPaymentID
	}
	return &PaymentInfo{
		ID:                id,
		Status:            res.Status,
		StatusDetail:      res.StatusDetail,
		DateApproved:      res.DateApproved,
		ExternalReference: res.ExternalReference,
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("mercadopago: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("mercadopago: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Idempotency-Key", tool.NewIdempotencyKey())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mercadopago: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mercadopago: read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := e.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("mercadopago: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("mercadopago: decode response: %w", err)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)

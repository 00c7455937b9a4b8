package payfast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
)

const (
	liveBaseURL    = "https://www.payfast.co.za"
	sandboxBaseURL = "https://sandbox.payfast.co.za"

	processPath  = "/eng/process"
	validatePath = "/eng/query/validate"
	fetchPath    = "/eng/query/fetch"
)

// StatusComplete is the gateway's terminal success status. Anything else is
// acknowledged but never credited.
const StatusComplete = "COMPLETE"

// Config holds the merchant-side gateway configuration.
type Config struct {
	MerchantID   string
	MerchantKey  string
	Passphrase   string
	Sandbox      bool
	NotifyURL    string
	ReturnURL    string
	CancelURL    string
	QueryTimeout time.Duration
	BaseURL      string // overrides sandbox/live selection; tests only
}

// Client builds signed payment-creation requests and performs synchronous
// status queries against the gateway.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "payfast").Logger(),
	}
}

// Configured reports whether merchant credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.MerchantID != "" && c.cfg.MerchantKey != ""
}

// Passphrase exposes the signing passphrase for webhook verification.
func (c *Client) Passphrase() string {
	return c.cfg.Passphrase
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	if c.cfg.Sandbox {
		return sandboxBaseURL
	}
	return liveBaseURL
}

// CreateRequest is the input for building a payment-creation field set.
type CreateRequest struct {
	PaymentID       string // local reference, becomes m_payment_id
	Amount          decimal.Decimal
	OwnerID         string
	Purpose         string
	ItemName        string
	ItemDescription string
	Email           string
	CellNumber      string
}

// PaymentRequest is a signed field set ready to hand to the browser flow.
type PaymentRequest struct {
	Fields map[string]string
	URL    string
}

// BuildPaymentRequest assembles and signs the outbound creation field set.
// Optional fields are included only when non-empty; client-supplied
// return/cancel URLs enter the signed payload only if they pass the http(s)
// allow-list. Signing uses IncludeEmpty=false per the gateway contract.
func (c *Client) BuildPaymentRequest(req CreateRequest) (*PaymentRequest, error) {
	if !c.Configured() {
		return nil, domain.ErrGatewayNotConfigured
	}

	fields := map[string]string{
		"merchant_id":      c.cfg.MerchantID,
		"merchant_key":     c.cfg.MerchantKey,
		"notify_url":       c.cfg.NotifyURL,
		"m_payment_id":     req.PaymentID,
		"amount":           req.Amount.StringFixed(2),
		"item_name":        req.ItemName,
		"item_description": req.ItemDescription,
		"custom_str1":      req.OwnerID,
		"custom_str2":      req.Purpose,
	}
	if req.Email != "" {
		fields["email_address"] = req.Email
	}
	if req.CellNumber != "" {
		fields["cell_number"] = req.CellNumber
	}
	if c.cfg.ReturnURL != "" && domain.ValidateRedirectURL(c.cfg.ReturnURL) == nil {
		fields["return_url"] = c.cfg.ReturnURL
	}
	if c.cfg.CancelURL != "" && domain.ValidateRedirectURL(c.cfg.CancelURL) == nil {
		fields["cancel_url"] = c.cfg.CancelURL
	}

	fields[SignatureField] = Sign(fields, c.cfg.Passphrase, CanonicalOpts{IncludeEmpty: false})

	return &PaymentRequest{
		Fields: fields,
		URL:    c.baseURL() + processPath,
	}, nil
}

// Status is the parsed result of a gateway status query.
type Status struct {
	PaymentStatus    string
	GatewayPaymentID string
	AmountGross      string
	PaymentMethod    string
	Raw              map[string]string
}

// Complete reports whether the gateway considers the payment settled.
func (s *Status) Complete() bool {
	return s.PaymentStatus == StatusComplete
}

// QueryStatus validates and fetches the state of a payment by the
// gateway-side payment id. Query signing uses IncludeEmpty=true. Transport
// failures are retried with backoff inside the context deadline; parse
// failures are not.
func (c *Client) QueryStatus(ctx context.Context, gatewayPaymentID string) (*Status, error) {
	if !c.Configured() {
		return nil, domain.ErrGatewayNotConfigured
	}

	fields := map[string]string{
		"merchant_id":   c.cfg.MerchantID,
		"merchant_key":  c.cfg.MerchantKey,
		"pf_payment_id": gatewayPaymentID,
	}
	fields[SignatureField] = Sign(fields, c.cfg.Passphrase, CanonicalOpts{IncludeEmpty: true})

	body, err := c.postForm(ctx, c.baseURL()+validatePath, fields)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(body), "VALID") {
		return nil, fmt.Errorf("%w: query rejected: %s", domain.ErrGatewayUnavailable, strings.TrimSpace(body))
	}

	body, err = c.postForm(ctx, c.baseURL()+fetchPath, fields)
	if err != nil {
		return nil, err
	}

	parsed, err := parseResponse(body)
	if err != nil {
		return nil, err
	}

	return &Status{
		PaymentStatus:    parsed["payment_status"],
		GatewayPaymentID: parsed["pf_payment_id"],
		AmountGross:      parsed["amount_gross"],
		PaymentMethod:    parsed["payment_method"],
		Raw:              parsed,
	}, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, fields map[string]string) (string, error) {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	encoded := form.Encode()

	var body string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			return err // transient, retry
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("gateway returned status %d", resp.StatusCode))
		}

		body = string(raw)
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("gateway request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return body, nil
}

// parseResponse parses the gateway's key=value&... response body.
func parseResponse(body string) (map[string]string, error) {
	values, err := url.ParseQuery(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable gateway response", domain.ErrGatewayUnavailable)
	}
	parsed := make(map[string]string, len(values))
	for k := range values {
		parsed[k] = values.Get(k)
	}
	return parsed, nil
}

package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Gateway status values as reported back to callers.
const (
	GatewayStatusPending   = "PENDING"
	GatewayStatusComplete  = "COMPLETE"
	GatewayStatusFailed    = "FAILED"
	GatewayStatusCancelled = "CANCELLED"
)

// PaymentGateway abstracts the hosted checkout provider. The server creates a
// checkout, redirects the buyer to PaymentURL, and later polls QueryStatus
// with the reference number the gateway issued.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	QueryStatus(ctx context.Context, reference string) (*CheckoutStatus, error)
	VerifyNotification(params map[string]string) bool
}

// CheckoutInput carries everything the gateway needs to open a checkout.
type CheckoutInput struct {
	Amount        uint64 // whole USD
	Currency      string
	InvoiceNumber string // merchant-side unique ID
	Description   string
	ReturnURL     string
	CancelURL     string
	NotifyURL     string
	BuyerEmail    string
}

// CheckoutResult is the gateway's answer to a new checkout.
type CheckoutResult struct {
	ReferenceNumber string
	PaymentURL      string
	ExpiresAt       *time.Time
}

// CheckoutStatus is the current state of a checkout as the gateway sees it.
type CheckoutStatus struct {
	ReferenceNumber string
	Status          string // one of the GatewayStatus* values
	AmountGross     uint64
	RawStatus       string
}

// ErrGatewayUnavailable marks transport-level gateway failures so callers can
// distinguish them from a definitive answer.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PayFastClient talks to a PayFast-style hosted checkout API.
type PayFastClient struct {
	BaseURL     string
	MerchantID  string
	MerchantKey string
	Passphrase  string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// NewPayFastClient creates a gateway client.
func NewPayFastClient(baseURL, merchantID, merchantKey, passphrase string, timeout time.Duration) *PayFastClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PayFastClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		MerchantID:  merchantID,
		MerchantKey: merchantKey,
		Passphrase:  passphrase,
		HTTPClient:  &http.Client{Timeout: timeout},
		Timeout:     timeout,
	}
}

func (c *PayFastClient) Name() string { return "payfast" }

type payfastCheckoutReq struct {
	MerchantID   string `json:"merchant_id"`
	MerchantKey  string `json:"merchant_key"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ItemName     string `json:"item_name"`
	PaymentID    string `json:"m_payment_id"`
	ReturnURL    string `json:"return_url,omitempty"`
	CancelURL    string `json:"cancel_url,omitempty"`
	NotifyURL    string `json:"notify_url,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	Signature    string `json:"signature"`
}

type payfastCheckoutData struct {
	ReferenceNumber string `json:"pf_payment_id"`
	PaymentURL      string `json:"redirect_url"`
	ExpiresAt       int64  `json:"expires_at"`
}

type payfastEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// CreateCheckout opens a checkout and returns the gateway reference and the
// URL the buyer must be sent to.
func (c *PayFastClient) CreateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	body := payfastCheckoutReq{
		MerchantID:   c.MerchantID,
		MerchantKey:  c.MerchantKey,
		Amount:       fmt.Sprintf("%d.00", in.Amount),
		Currency:     in.Currency,
		ItemName:     in.Description,
		PaymentID:    in.InvoiceNumber,
		ReturnURL:    in.ReturnURL,
		CancelURL:    in.CancelURL,
		NotifyURL:    in.NotifyURL,
		EmailAddress: in.BuyerEmail,
	}
	body.Signature = c.sign(map[string]string{
		"merchant_id":   body.MerchantID,
		"merchant_key":  body.MerchantKey,
		"amount":        body.Amount,
		"currency":      body.Currency,
		"item_name":     body.ItemName,
		"m_payment_id":  body.PaymentID,
		"return_url":    body.ReturnURL,
		"cancel_url":    body.CancelURL,
		"notify_url":    body.NotifyURL,
		"email_address": body.EmailAddress,
	})

	var env payfastEnvelope
	if err := c.postJSON(ctx, "/onsite/process", body, &env); err != nil {
		return nil, err
	}

	var data payfastCheckoutData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("payfast: malformed checkout response: %w", err)
	}
	if data.ReferenceNumber == "" || data.PaymentURL == "" {
		return nil, fmt.Errorf("payfast: incomplete checkout response: %s", env.Message)
	}

	result := &CheckoutResult{
		ReferenceNumber: data.ReferenceNumber,
		PaymentURL:      data.PaymentURL,
	}
	if data.ExpiresAt > 0 {
		exp := time.Unix(data.ExpiresAt, 0).UTC()
		result.ExpiresAt = &exp
	}
	return result, nil
}

type payfastStatusData struct {
	ReferenceNumber string `json:"pf_payment_id"`
	PaymentStatus   string `json:"payment_status"`
	AmountGross     string `json:"amount_gross"`
}

// QueryStatus fetches the current state of a checkout by gateway reference.
func (c *PayFastClient) QueryStatus(ctx context.Context, reference string) (*CheckoutStatus, error) {
	endpoint := c.BaseURL + "/process/query/" + url.PathEscape(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("merchant-id", c.MerchantID)
	req.Header.Set("signature", c.sign(map[string]string{
		"merchant_id":   c.MerchantID,
		"pf_payment_id": reference,
	}))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for query", ErrGatewayUnavailable, resp.StatusCode)
	}

	var env payfastEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("payfast: malformed status response: %w", err)
	}
	var data payfastStatusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("payfast: malformed status response: %w", err)
	}

	return &CheckoutStatus{
		ReferenceNumber: data.ReferenceNumber,
		Status:          normalizeGatewayStatus(data.PaymentStatus),
		AmountGross:     parseGrossAmount(data.AmountGross),
		RawStatus:       data.PaymentStatus,
	}, nil
}

// VerifyNotification checks the signature of an instant notification payload.
func (c *PayFastClient) VerifyNotification(params map[string]string) bool {
	got, ok := params["signature"]
	if !ok || got == "" {
		return false
	}
	unsigned := make(map[string]string, len(params))
	for k, v := range params {
		if k == "signature" {
			continue
		}
		unsigned[k] = v
	}
	return c.sign(unsigned) == got
}

// sign produces the MD5 signature over url-encoded params sorted by key, with
// the passphrase appended when configured.
func (c *PayFastClient) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	if c.Passphrase != "" {
		sb.WriteString("&passphrase=")
		sb.WriteString(url.QueryEscape(c.Passphrase))
	}

	sum := md5.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func (c *PayFastClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d for %s", ErrGatewayUnavailable, resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeGatewayStatus(raw string) string {
	switch strings.ToUpper(raw) {
	case "COMPLETE", "COMPLETED", "PAID":
		return GatewayStatusComplete
	case "FAILED", "DECLINED":
		return GatewayStatusFailed
	case "CANCELLED", "CANCELED":
		return GatewayStatusCancelled
	default:
		return GatewayStatusPending
	}
}

func parseGrossAmount(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		raw = raw[:idx]
	}
	var total uint64
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
		total = total*10 + uint64(r-'0')
	}
	return total
}

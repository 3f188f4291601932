package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/onsite/process", r.URL.Path)

		var req payfastCheckoutReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "merchant-1", req.MerchantID)
		assert.Equal(t, "350.00", req.Amount)
		assert.Equal(t, "USD", req.Currency)
		assert.Equal(t, "INV-0001", req.PaymentID)
		assert.NotEmpty(t, req.Signature)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  200,
			"message": "ok",
			"data": map[string]any{
				"pf_payment_id": "PF-12345",
				"redirect_url":  "https://pay.example.test/c/PF-12345",
				"expires_at":    time.Now().Add(30 * time.Minute).Unix(),
			},
		})
	}))
	defer server.Close()

	client := NewPayFastClient(server.URL, "merchant-1", "key-1", "passphrase", 5*time.Second)

	result, err := client.CreateCheckout(context.Background(), CheckoutInput{
		Amount:        350,
		Currency:      "USD",
		InvoiceNumber: "INV-0001",
		Description:   "ad placement",
	})
	require.NoError(t, err)
	assert.Equal(t, "PF-12345", result.ReferenceNumber)
	assert.Equal(t, "https://pay.example.test/c/PF-12345", result.PaymentURL)
	require.NotNil(t, result.ExpiresAt)
	assert.True(t, result.ExpiresAt.After(time.Now()))
}

func TestCreateCheckoutIncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  200,
			"message": "merchant key rejected",
			"data":    map[string]any{},
		})
	}))
	defer server.Close()

	client := NewPayFastClient(server.URL, "merchant-1", "key-1", "", 5*time.Second)

	result, err := client.CreateCheckout(context.Background(), CheckoutInput{
		Amount:        100,
		Currency:      "USD",
		InvoiceNumber: "INV-0002",
	})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestQueryStatus(t *testing.T) {
	tests := []struct {
		name       string
		rawStatus  string
		wantStatus string
	}{
		{name: "complete", rawStatus: "COMPLETE", wantStatus: GatewayStatusComplete},
		{name: "lowercase paid", rawStatus: "paid", wantStatus: GatewayStatusComplete},
		{name: "failed", rawStatus: "FAILED", wantStatus: GatewayStatusFailed},
		{name: "cancelled", rawStatus: "CANCELLED", wantStatus: GatewayStatusCancelled},
		{name: "unknown maps to pending", rawStatus: "PROCESSING", wantStatus: GatewayStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/process/query/PF-777", r.URL.Path)
				require.NotEmpty(t, r.Header.Get("signature"))

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": 200,
					"data": map[string]any{
						"pf_payment_id":  "PF-777",
						"payment_status": tt.rawStatus,
						"amount_gross":   "200.00",
					},
				})
			}))
			defer server.Close()

			client := NewPayFastClient(server.URL, "merchant-1", "key-1", "", 5*time.Second)

			status, err := client.QueryStatus(context.Background(), "PF-777")
			require.NoError(t, err)
			assert.Equal(t, "PF-777", status.ReferenceNumber)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, uint64(200), status.AmountGross)
			assert.Equal(t, tt.rawStatus, status.RawStatus)
		})
	}
}

func TestQueryStatusUnknownReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewPayFastClient(server.URL, "merchant-1", "key-1", "", 5*time.Second)

	status, err := client.QueryStatus(context.Background(), "PF-unknown")
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestQueryStatusGatewayDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewPayFastClient(server.URL, "merchant-1", "key-1", "", 5*time.Second)

	status, err := client.QueryStatus(context.Background(), "PF-777")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Nil(t, status)
}

func TestVerifyNotification(t *testing.T) {
	client := NewPayFastClient("https://gateway.example.test", "merchant-1", "key-1", "secret-phrase", 5*time.Second)

	params := map[string]string{
		"m_payment_id":   "INV-0001",
		"pf_payment_id":  "PF-12345",
		"payment_status": "COMPLETE",
		"amount_gross":   "100.00",
	}
	params["signature"] = client.sign(params)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, client.VerifyNotification(params))
	})

	t.Run("tampered amount", func(t *testing.T) {
		tampered := make(map[string]string, len(params))
		for k, v := range params {
			tampered[k] = v
		}
		tampered["amount_gross"] = "1.00"
		assert.False(t, client.VerifyNotification(tampered))
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.False(t, client.VerifyNotification(map[string]string{"m_payment_id": "INV-0001"}))
	})

	t.Run("different passphrase", func(t *testing.T) {
		other := NewPayFastClient("https://gateway.example.test", "merchant-1", "key-1", "other-phrase", 5*time.Second)
		assert.False(t, other.VerifyNotification(params))
	})
}

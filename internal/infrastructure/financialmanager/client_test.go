package financialmanager

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nau/billing/internal/domain/billing"
)

func testPayload() *billing.TransactionPayload {
	return billing.NewTransactionPayload(&billing.Order{
		Number:       "NAU-100001",
		OwnerName:    "Maria Silva",
		OwnerEmail:   "maria@example.com",
		Currency:     "EUR",
		TotalInclTax: decimal.RequireFromString("49.00"),
	}, nil)
}

func TestClientEnabled(t *testing.T) {
	client := NewClient(Config{"nau": {URL: "http://x", Token: "t"}})

	assert.True(t, client.Enabled("nau"))
	assert.True(t, client.Enabled("NAU"))
	assert.False(t, client.Enabled("other"))
}

func TestSendTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the payload with the configured token", func(t *testing.T) {
		var gotAuth, gotContentType string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"transaction_id":"NAU-100001"}`))
		}))
		defer server.Close()

		client := NewClient(Config{"nau": {URL: server.URL, Token: "secret-token"}})
		result, err := client.SendTransaction(ctx, "nau", testPayload())

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.StatusCode)
		assert.JSONEq(t, `{"transaction_id":"NAU-100001"}`, string(result.Body))
		assert.Equal(t, "secret-token", gotAuth)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "NAU-100001", gotBody["transaction_id"])
		assert.Equal(t, "credit", gotBody["transaction_type"])
	})

	t.Run("non-2xx statuses are returned, not errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"email": ["invalid."]}`))
		}))
		defer server.Close()

		client := NewClient(Config{"nau": {URL: server.URL, Token: "t"}})
		result, err := client.SendTransaction(ctx, "nau", testPayload())

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	})

	t.Run("unknown partner", func(t *testing.T) {
		client := NewClient(Config{})
		_, err := client.SendTransaction(ctx, "nau", testPayload())
		assert.ErrorIs(t, err, billing.ErrNotConfigured)
	})

	t.Run("partner entry without url", func(t *testing.T) {
		client := NewClient(Config{"nau": {Token: "t"}})
		_, err := client.SendTransaction(ctx, "nau", testPayload())
		assert.ErrorIs(t, err, billing.ErrMissingSetting)
		assert.Contains(t, err.Error(), "financial_manager.partners.nau.url")
	})

	t.Run("partner entry without token", func(t *testing.T) {
		client := NewClient(Config{"nau": {URL: "http://x"}})
		_, err := client.SendTransaction(ctx, "nau", testPayload())
		assert.ErrorIs(t, err, billing.ErrMissingSetting)
	})

	t.Run("transport errors are returned as errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // refuse connections

		client := NewClient(Config{"nau": {URL: server.URL, Token: "t"}})
		_, err := client.SendTransaction(ctx, "nau", testPayload())
		assert.Error(t, err)
	})
}

func TestReceiptLink(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the body on 200", func(t *testing.T) {
		var gotPath, gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("https://receipts.example.com/abc.pdf"))
		}))
		defer server.Close()

		client := NewClient(Config{"nau": {ReceiptLinkURL: server.URL + "/receipts", Token: "t"}})
		link, err := client.ReceiptLink(ctx, "nau", "NAU-100001")

		require.NoError(t, err)
		assert.Equal(t, "https://receipts.example.com/abc.pdf", link)
		assert.Equal(t, "/receipts/NAU-100001/", gotPath)
		assert.Equal(t, "t", gotAuth)
	})

	t.Run("non-200 means not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(Config{"nau": {ReceiptLinkURL: server.URL, Token: "t"}})
		link, err := client.ReceiptLink(ctx, "nau", "NAU-100001")

		require.NoError(t, err)
		assert.Empty(t, link)
	})

	t.Run("missing receipt url is a configuration error", func(t *testing.T) {
		client := NewClient(Config{"nau": {URL: "http://x", Token: "t"}})
		_, err := client.ReceiptLink(ctx, "nau", "NAU-100001")
		assert.ErrorIs(t, err, billing.ErrMissingSetting)
	})

	t.Run("transport error is propagated to the caller", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(Config{"nau": {ReceiptLinkURL: server.URL, Token: "t"}})
		_, err := client.ReceiptLink(ctx, "nau", "NAU-100001")
		assert.Error(t, err)
	})
}

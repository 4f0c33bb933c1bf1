package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSuccess(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"payment_code": "mp-123"})
	}))
	defer server.Close()

	adapter := webhook.New(webhook.Config{
		ProcessorURL: server.URL,
		APIHost:      "api.snackhouse.dev/orders",
	}, nil)

	record := payment.New(42, 24.90)
	registered, err := adapter.Register(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "mp-123", registered.Reference)

	assert.Equal(t, "https://api.snackhouse.dev/orders/42/pagamento", gotBody["webhook_url"])
	assert.InDelta(t, 24.90, gotBody["value"].(float64), 1e-9)
}

func TestRegisterMissingPaymentCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	adapter := webhook.New(webhook.Config{ProcessorURL: server.URL, APIHost: "host"}, nil)

	_, err := adapter.Register(context.Background(), payment.New(1, 10))
	assert.ErrorIs(t, err, payment.ErrAdapter)
}

func TestRegisterProcessorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := webhook.New(webhook.Config{ProcessorURL: server.URL, APIHost: "host"}, nil)

	_, err := adapter.Register(context.Background(), payment.New(1, 10))
	assert.ErrorIs(t, err, payment.ErrAdapter)
	// the cause travels in the chain, not just the logs
	assert.Contains(t, err.Error(), "500")
}

func TestRegisterTransportError(t *testing.T) {
	adapter := webhook.New(webhook.Config{
		ProcessorURL: "http://127.0.0.1:1", // nothing listens here
		APIHost:      "host",
	}, nil)

	_, err := adapter.Register(context.Background(), payment.New(1, 10))
	assert.ErrorIs(t, err, payment.ErrAdapter)
	assert.NotEqual(t, payment.ErrAdapter.Error(), err.Error())
}

func TestRegisterMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	adapter := webhook.New(webhook.Config{ProcessorURL: server.URL, APIHost: "host"}, nil)

	_, err := adapter.Register(context.Background(), payment.New(1, 10))
	assert.ErrorIs(t, err, payment.ErrAdapter)
}

func TestIngest(t *testing.T) {
	adapter := webhook.New(webhook.Config{ProcessorURL: "http://unused", APIHost: "host"}, nil)

	tests := []struct {
		name      string
		payload   map[string]any
		wantState payment.State
		wantRef   string
	}{
		{
			name:      "approved with reference",
			payload:   map[string]any{"action": "payment.approved", "id": "mp-9"},
			wantState: payment.StateApproved,
			wantRef:   "mp-9",
		},
		{
			name:      "approved without reference keeps existing",
			payload:   map[string]any{"action": "payment.approved"},
			wantState: payment.StateApproved,
			wantRef:   "original",
		},
		{
			name:      "unknown action is a no-op",
			payload:   map[string]any{"action": "payment.created", "id": "mp-9"},
			wantState: payment.StatePending,
			wantRef:   "mp-9",
		},
		{
			name:      "empty payload",
			payload:   map[string]any{},
			wantState: payment.StatePending,
			wantRef:   "original",
		},
		{
			name:      "non-string fields ignored",
			payload:   map[string]any{"action": 7, "id": 12.5},
			wantState: payment.StatePending,
			wantRef:   "original",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := payment.New(1, 10)
			record.Reference = "original"

			got := adapter.Ingest(tt.payload, record)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantRef, got.Reference)
		})
	}
}

func TestRegisterCallbackURLContainsOrderID(t *testing.T) {
	var url string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		url, _ = body["webhook_url"].(string)
		_ = json.NewEncoder(w).Encode(map[string]string{"payment_code": "x"})
	}))
	defer server.Close()

	adapter := webhook.New(webhook.Config{ProcessorURL: server.URL, APIHost: "shop.example"}, nil)
	_, err := adapter.Register(context.Background(), payment.New(7, 1))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/7/pagamento"), url)
}

package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrivekit/thrivekit/internal/providers/payment/domain"
)

func TestRetrieveCharge(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "ch_123",
			"amount": 2000,
			"created": 1609545600,
			"source": {"brand": "Visa", "last4": "4242", "exp_month": 12, "exp_year": 2027}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_abc")
	charge, err := client.Retrieve(context.Background(), "ch_123")
	require.NoError(t, err)

	assert.Equal(t, "/v1/charges/ch_123", gotPath)
	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.Equal(t, "ch_123", charge.ID)
	assert.Equal(t, int64(2000), charge.Amount)
	assert.Equal(t, int64(1609545600), charge.Created)
	assert.Equal(t, "Visa", charge.Source.Brand)
	assert.Equal(t, "4242", charge.Source.Last4)
	assert.Equal(t, 12, charge.Source.ExpMonth)
	assert.Equal(t, 2027, charge.Source.ExpYear)
}

func TestRetrieveChargeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_abc")
	_, err := client.Retrieve(context.Background(), "ch_missing")
	require.ErrorIs(t, err, domain.ErrChargeNotFound)
}

func TestRetrieveChargeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_abc")
	_, err := client.Retrieve(context.Background(), "ch_123")
	require.ErrorIs(t, err, domain.ErrProviderError)
}

func TestRetrieveChargeEmptyID(t *testing.T) {
	client := NewClient("", "sk_test_abc")
	_, err := client.Retrieve(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrChargeNotFound)
}

package oxapay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment(t *testing.T) {
	var got paymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/merchants/request", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"result": 100, "payLink": "https://pay.example/abc", "trackId": 991,
		})
	}))
	defer srv.Close()

	s := NewService("merchant-key", srv.URL, "https://shop/api/checkout/callback", "https://shop/order/success")

	link, trackID, err := s.CreatePayment(context.Background(), "20.00", "a@b.com", "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", link)
	assert.Equal(t, int64(991), trackID)

	assert.Equal(t, "merchant-key", got.Merchant)
	assert.Equal(t, "20.00", got.Amount)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 30, got.LifeTime)
	assert.Equal(t, "ord-1", got.OrderID)
	assert.Equal(t, "https://shop/api/checkout/callback", got.CallbackURL)
	assert.Equal(t, "https://shop/order/success?orderId=ord-1", got.ReturnURL)
}

func TestCreatePaymentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": 101, "message": "invalid merchant"})
	}))
	defer srv.Close()

	s := NewService("k", srv.URL, "cb", "ret")
	_, _, err := s.CreatePayment(context.Background(), "1.00", "a@b.com", "o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid merchant")
}

func TestInquiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/merchants/inquiry", r.URL.Path)
		var req inquiryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.TrackID)
		json.NewEncoder(w).Encode(map[string]any{"result": 100, "status": "Paid"})
	}))
	defer srv.Close()

	s := NewService("k", srv.URL, "cb", "ret")
	status, err := s.Inquiry(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Paid", status)
}

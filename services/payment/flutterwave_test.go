package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlutterwaveInitiate(t *testing.T) {
	var got flwPaymentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"link":"https://checkout.flutterwave.com/v3/hosted/pay/abc"}}`))
	}))
	defer srv.Close()

	fw := NewFlutterwave(srv.URL+"/", "sk_test")
	checkout, err := fw.Initiate(context.Background(), CheckoutRequest{
		Reference:   "ref-1",
		Amount:      5000,
		Currency:    "NGN",
		CourseID:    7,
		CourseTitle: "Go",
		StudentID:   3,
		Customer:    Customer{Email: "ada@example.com", Name: "Ada Obi"},
		RedirectURL: "http://localhost/payment/callback",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.flutterwave.com/v3/hosted/pay/abc", checkout.CheckoutURL)
	assert.Equal(t, "ref-1", checkout.Reference)

	assert.Equal(t, "ref-1", got.TxRef)
	assert.Equal(t, 5000.0, got.Amount)
	assert.Equal(t, "ada@example.com", got.Customer.Email)
	assert.Equal(t, "Payment for Go", got.Customizations.Title)
	assert.Equal(t, "7", got.Meta["course_id"])
}

func TestFlutterwaveInitiateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"Invalid currency"}`))
	}))
	defer srv.Close()

	_, err := NewFlutterwave(srv.URL, "sk_test").Initiate(context.Background(), CheckoutRequest{Reference: "r"})
	assert.ErrorIs(t, err, ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestFlutterwaveVerify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		successful bool
	}{
		{"successful", `{"status":"success","data":{"status":"successful","tx_ref":"ref-1","amount":5000,"currency":"NGN"}}`, true},
		{"failed charge", `{"status":"success","data":{"status":"failed","tx_ref":"ref-1","amount":5000,"currency":"NGN"}}`, false},
		{"reference mismatch", `{"status":"success","data":{"status":"successful","tx_ref":"other","amount":5000}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transactions/4242/verify", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v, err := NewFlutterwave(srv.URL, "sk_test").Verify(context.Background(), "ref-1", "4242")
			require.NoError(t, err)
			assert.Equal(t, tt.successful, v.Successful)
			assert.Equal(t, "4242", v.TransactionID)
			assert.NotEmpty(t, v.Raw)
		})
	}
}

func TestFlutterwaveVerifyNeedsTransactionID(t *testing.T) {
	_, err := NewFlutterwave("http://localhost", "sk").Verify(context.Background(), "ref", "")
	assert.ErrorIs(t, err, ErrGatewayRejected)
}

// Package payment talks to the configured checkout provider and applies
// verified payments to enrollments.
package payment

import (
	"context"
	"fmt"

	"lms/config"
)

const (
	ProviderFlutterwave = "flutterwave"
	ProviderMidtrans    = "midtrans"
	ProviderMock        = "mock"
)

type Customer struct {
	Email string
	Name  string
	Phone string
}

// CheckoutRequest describes one course purchase. Reference is our own payment id
// and is sent to the provider as the merchant transaction reference.
type CheckoutRequest struct {
	Reference   string
	Amount      float64
	Currency    string
	CourseID    uint
	CourseTitle string
	StudentID   uint
	Customer    Customer
	RedirectURL string
}

type Checkout struct {
	Reference   string
	CheckoutURL string
}

// Verification is the provider's view of a transaction
type Verification struct {
	Successful    bool
	TransactionID string
	Status        string
	Amount        float64
	Currency      string
	Raw           map[string]interface{}
}

type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	Verify(ctx context.Context, reference, transactionID string) (*Verification, error)
}

// NewGateway builds the gateway selected by PAYMENT_PROVIDER
func NewGateway(cfg config.PaymentConfig) (Gateway, error) {
	switch cfg.Provider {
	case ProviderFlutterwave:
		return NewFlutterwave(cfg.FlutterwaveBaseURL, cfg.FlutterwaveSecretKey), nil
	case ProviderMidtrans:
		return NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProduction), nil
	case ProviderMock, "":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

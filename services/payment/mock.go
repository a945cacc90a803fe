package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Mock approves every payment; used in development and tests
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (Mock) Name() string { return ProviderMock }

func (Mock) Initiate(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	ref := "MOCK-" + uuid.NewString()
	url := fmt.Sprintf("%s?tx_ref=%s&status=successful&mock=true", req.RedirectURL, ref)
	return &Checkout{Reference: ref, CheckoutURL: url}, nil
}

func (Mock) Verify(ctx context.Context, reference, transactionID string) (*Verification, error) {
	if transactionID == "" {
		transactionID = reference
	}
	return &Verification{
		Successful:    true,
		TransactionID: transactionID,
		Status:        "successful",
		Raw:           map[string]interface{}{"mock": true, "tx_ref": reference},
	}, nil
}

package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans creates Snap checkouts and reads transaction status through the Core API
type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *Midtrans) Name() string { return ProviderMidtrans }

func (m *Midtrans) Initiate(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	gross := int64(math.Round(req.Amount))
	if gross <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrGatewayRejected)
	}

	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Reference,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       strconv.FormatUint(uint64(req.CourseID), 10),
				Price:    gross,
				Qty:      1,
				Name:     truncate(req.CourseTitle, 50),
				Category: "course",
			},
		},
	}

	resp, mErr := m.snap.CreateTransaction(sreq)
	if mErr != nil {
		return nil, fmt.Errorf("%w: midtrans snap (%d) %s", ErrGatewayRejected, mErr.StatusCode, mErr.Message)
	}
	return &Checkout{Reference: req.Reference, CheckoutURL: resp.RedirectURL}, nil
}

func (m *Midtrans) Verify(ctx context.Context, reference, transactionID string) (*Verification, error) {
	res, mErr := m.core.CheckTransaction(reference)
	if mErr != nil {
		return nil, fmt.Errorf("%w: midtrans status (%d) %s", ErrGatewayRejected, mErr.StatusCode, mErr.Message)
	}

	amount, _ := strconv.ParseFloat(res.GrossAmount, 64)
	return &Verification{
		Successful:    midtransSettled(res.TransactionStatus, res.FraudStatus),
		TransactionID: res.TransactionID,
		Status:        res.TransactionStatus,
		Amount:        amount,
		Currency:      res.Currency,
		Raw: map[string]interface{}{
			"order_id":           res.OrderID,
			"transaction_id":     res.TransactionID,
			"transaction_status": res.TransactionStatus,
			"fraud_status":       res.FraudStatus,
			"payment_type":       res.PaymentType,
			"gross_amount":       res.GrossAmount,
		},
	}, nil
}

// midtransSettled: capture counts only when the fraud check accepted it
func midtransSettled(status, fraud string) bool {
	switch status {
	case "settlement":
		return true
	case "capture":
		return fraud == "" || fraud == "accept"
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

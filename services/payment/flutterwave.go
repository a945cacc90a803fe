package payment

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-resty/resty/v2"
)

type Flutterwave struct {
	client *resty.Client
}

func NewFlutterwave(baseURL, secretKey string) *Flutterwave {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/json")
	return &Flutterwave{client: client}
}

func (f *Flutterwave) Name() string { return ProviderFlutterwave }

type flwCustomer struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
}

type flwCustomizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type flwPaymentRequest struct {
	TxRef          string            `json:"tx_ref"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	RedirectURL    string            `json:"redirect_url"`
	Customer       flwCustomer       `json:"customer"`
	Customizations flwCustomizations `json:"customizations"`
	Meta           map[string]string `json:"meta"`
}

type flwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

type flwVerifyResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (f *Flutterwave) Initiate(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	body := flwPaymentRequest{
		TxRef:       req.Reference,
		Amount:      req.Amount,
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
		Customer: flwCustomer{
			Email:       req.Customer.Email,
			Name:        req.Customer.Name,
			PhoneNumber: req.Customer.Phone,
		},
		Customizations: flwCustomizations{
			Title:       "Payment for " + req.CourseTitle,
			Description: "Course: " + req.CourseTitle,
		},
		Meta: map[string]string{
			"course_id":  fmt.Sprint(req.CourseID),
			"student_id": fmt.Sprint(req.StudentID),
			"payment_id": req.Reference,
		},
	}

	var out flwPaymentResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/payments")
	if err != nil {
		return nil, fmt.Errorf("flutterwave initiate: %w", err)
	}
	if resp.StatusCode() != 200 || out.Status != "success" || out.Data.Link == "" {
		log.Printf("[Payment] flutterwave initiate rejected (%d): %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, out.Message)
	}
	return &Checkout{Reference: req.Reference, CheckoutURL: out.Data.Link}, nil
}

func (f *Flutterwave) Verify(ctx context.Context, reference, transactionID string) (*Verification, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", ErrGatewayRejected)
	}

	var out flwVerifyResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("id", transactionID).
		SetResult(&out).
		SetError(&out).
		Get("/transactions/{id}/verify")
	if err != nil {
		return nil, fmt.Errorf("flutterwave verify: %w", err)
	}
	if resp.StatusCode() != 200 {
		log.Printf("[Payment] flutterwave verify failed (%d): %s", resp.StatusCode(), resp.String())
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, out.Message)
	}

	status, _ := out.Data["status"].(string)
	txRef, _ := out.Data["tx_ref"].(string)
	amount, _ := out.Data["amount"].(float64)
	currency, _ := out.Data["currency"].(string)

	v := &Verification{
		Successful:    out.Status == "success" && status == "successful" && (txRef == "" || txRef == reference),
		TransactionID: transactionID,
		Status:        status,
		Amount:        amount,
		Currency:      currency,
		Raw:           out.Data,
	}
	return v, nil
}

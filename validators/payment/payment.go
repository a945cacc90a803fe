package paymentValidator

import (
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type InitiateRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// VerifyRequest mirrors the provider callback. tx_ref is either the payment id
// or the reference handed out by the provider.
type VerifyRequest struct {
	TxRef         string `json:"tx_ref" validate:"required,max=100"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func Initiate() fiber.Handler {
	return validators.Body[InitiateRequest]("validatedPayment")
}

func Verify() fiber.Handler {
	return validators.Body[VerifyRequest]("validatedVerification")
}

package paymentController

import (
	"errors"
	"log"

	"lms/middleware"
	"lms/models"
	"lms/services/payment"
	"lms/utils"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentController struct {
	db      *gorm.DB
	payment *payment.Service
	mail    *utils.EmailService
}

func New(db *gorm.DB, svc *payment.Service, mail *utils.EmailService) *PaymentController {
	return &PaymentController{db: db, payment: svc, mail: mail}
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, payment.ErrCourseNotFound), errors.Is(err, payment.ErrPaymentNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, payment.ErrFreeCourse),
		errors.Is(err, payment.ErrAlreadyEnrolled),
		errors.Is(err, payment.ErrPaymentNotOpen):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, payment.ErrGatewayRejected):
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, err.Error(), nil)
	}
	log.Printf("[Payment] unexpected error: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process payment!", nil)
}

func (pc *PaymentController) Initiate(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPayment").(*paymentValidator.InitiateRequest)

	var student models.User
	if err := pc.db.Where("id = ? AND is_deleted = ?", utils.UserID(c), false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	p, reused, err := pc.payment.Initiate(c.UserContext(), student, reqData.CourseID)
	if err != nil {
		return paymentError(c, err)
	}

	message := "Payment initiated successfully."
	if reused {
		message = "Pending payment found."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"payment_id":  p.ID,
		"tx_ref":      p.Reference,
		"payment_url": p.CheckoutURL,
		"amount":      p.Amount,
		"currency":    p.Currency,
		"provider":    p.Provider,
	})
}

func (pc *PaymentController) Verify(c *fiber.Ctx) error {
	reqData := c.Locals("validatedVerification").(*paymentValidator.VerifyRequest)
	studentID := utils.UserID(c)

	outcome, err := pc.payment.Verify(c.UserContext(), studentID, reqData.TxRef, reqData.TransactionID)
	if errors.Is(err, payment.ErrPaymentFailed) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment verification failed.", fiber.Map{
			"payment_id": outcome.Payment.ID,
			"status":     outcome.Payment.Status,
		})
	}
	if err != nil {
		return paymentError(c, err)
	}

	p := outcome.Payment
	courseTitle := ""
	if p.Course != nil {
		courseTitle = p.Course.Title
	}

	if outcome.EnrollmentCreated && pc.mail != nil {
		var student models.User
		if pc.db.First(&student, studentID).Error == nil {
			pc.mail.SendPaymentReceiptEmail(student.Email, student.FullName(), courseTitle, p.Amount, p.Currency)
			pc.mail.SendEnrollmentEmail(student.Email, student.FullName(), courseTitle)
		}
	}

	message := "Payment verified successfully."
	if outcome.AlreadyVerified {
		message = "Payment was already verified."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"payment":            p,
		"enrollment_created": outcome.EnrollmentCreated,
		"course_title":       courseTitle,
		"amount_paid":        p.Amount,
		"currency":           p.Currency,
	})
}

func (pc *PaymentController) History(c *fiber.Ctx) error {
	payments, err := pc.payment.History(c.UserContext(), utils.UserID(c))
	if err != nil {
		return paymentError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment history fetched successfully.", payments)
}

func (pc *PaymentController) Status(c *fiber.Ctx) error {
	p, err := pc.payment.Get(c.UserContext(), utils.UserID(c), c.Params("payment_id"))
	if err != nil {
		return paymentError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status fetched successfully.", fiber.Map{
		"payment_id": p.ID,
		"status":     p.Status,
		"amount":     p.Amount,
		"currency":   p.Currency,
		"paid_at":    p.PaidAt,
		"course":     p.Course,
	})
}

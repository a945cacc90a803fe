package paymentRoutes

import (
	paymentController "lms/controllers/payment"
	"lms/middleware"
	"lms/models"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, pc *paymentController.PaymentController) {
	paymentGroup := app.Group("/api/payments", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent))

	paymentGroup.Post("/initiate", paymentValidator.Initiate(), pc.Initiate)
	paymentGroup.Post("/verify", paymentValidator.Verify(), pc.Verify)
	paymentGroup.Get("/history", pc.History)
	paymentGroup.Get("/:payment_id/status", pc.Status)
}

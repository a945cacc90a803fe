package contactRoutes

import (
	contactController "lms/controllers/contact"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	contactValidator "lms/validators/contact"

	"github.com/gofiber/fiber/v2"
)

func SetupContactRoutes(app *fiber.App, cc *contactController.ContactController) {
	contacts := app.Group("/api/contacts")

	contacts.Post("/", middleware.ContactRateLimiter(), contactValidator.Submit(), cc.Submit)

	admin := contacts.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/", contactValidator.List(), cc.List)
	admin.Get("/stats", cc.Stats)
	admin.Get("/:id", validators.Params("id"), cc.Get)
	admin.Patch("/:id/status", validators.Params("id"), contactValidator.UpdateStatus(), cc.UpdateStatus)
	admin.Delete("/:id", validators.Params("id"), cc.Delete)
}

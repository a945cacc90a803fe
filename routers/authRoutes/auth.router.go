package authRoutes

import (
	authController "lms/controllers/auth"
	"lms/middleware"
	"lms/models"
	authValidator "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth *authController.AuthController) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/register", middleware.RegisterRateLimiter(), authValidator.Register(), auth.Register)
	authGroup.Post("/login", middleware.LoginRateLimiter(), authValidator.Login(), auth.Login)
	authGroup.Post("/logout", middleware.JWTMiddleware, auth.Logout)

	// Email verification
	authGroup.Post("/verify-email", authValidator.VerifyEmail(), auth.VerifyEmail)
	authGroup.Post("/resend-otp", middleware.OTPRateLimiter(), authValidator.ResendOTP(), auth.ResendOTP)

	// Account
	authGroup.Get("/profile", middleware.JWTMiddleware, auth.GetProfile)
	authGroup.Put("/profile", middleware.JWTMiddleware, authValidator.UpdateProfile(), auth.UpdateProfile)
	authGroup.Put("/profile/picture", middleware.JWTMiddleware, auth.UploadProfilePicture)
	authGroup.Get("/user-info", middleware.JWTMiddleware, auth.UserInfo)
	authGroup.Post("/change-password", middleware.JWTMiddleware, authValidator.ChangePassword(), auth.ChangePassword)
	authGroup.Get("/login/history", middleware.JWTMiddleware, authValidator.LoginHistoryList(), auth.LoginHistoryList)

	authGroup.Get("/users/:role", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), authValidator.UsersByRole(), auth.UsersByRole)
}

package authValidator

import (
	"strings"

	"lms/middleware"
	"lms/models"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=15"`
	Role            string `json:"role" validate:"omitempty,oneof=student tutor admin"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=150"`
	LastName       *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,max=15"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func normalize(email *string) {
	*email = strings.ToLower(strings.TrimSpace(*email))
}

// Register validator middleware
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RegisterRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		normalize(&reqData.Email)
		reqData.Username = strings.TrimSpace(reqData.Username)
		if reqData.Role == "" {
			reqData.Role = models.RoleStudent
		}

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		normalize(&reqData.Email)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

func VerifyEmail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VerifyEmailRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		normalize(&reqData.Email)
		reqData.OTP = strings.TrimSpace(reqData.OTP)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedOTP", reqData)
		return c.Next()
	}
}

func ResendOTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ResendOTPRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		normalize(&reqData.Email)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedEmail", reqData)
		return c.Next()
	}
}

func ChangePassword() fiber.Handler {
	return validators.Body[ChangePasswordRequest]("validatedPassword")
}

func UpdateProfile() fiber.Handler {
	return validators.Body[UpdateProfileRequest]("validatedProfile")
}

// LoginHistoryList checks the optional paging query
func LoginHistoryList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  int `query:"page" json:"page" validate:"omitempty,gte=1"`
			Limit int `query:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}

func UsersByRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Params("role") {
		case models.RoleStudent, models.RoleTutor, models.RoleAdmin:
			return c.Next()
		}
		return middleware.ValidationErrorResponse(c, map[string]string{"role": "Must be one of: student, tutor, admin"})
	}
}

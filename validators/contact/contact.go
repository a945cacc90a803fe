package contactValidator

import (
	"strings"

	"lms/middleware"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type SubmitRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
	Message   string `json:"message" validate:"required,min=10,max=5000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied archived"`
}

type ListQuery struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=new read replied archived"`
	Search string `query:"search" json:"search" validate:"max=200"`
}

func Submit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.FirstName = strings.TrimSpace(reqData.FirstName)
		reqData.LastName = strings.TrimSpace(reqData.LastName)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Phone = strings.TrimSpace(reqData.Phone)
		reqData.Message = strings.TrimSpace(reqData.Message)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedContact", reqData)
		return c.Next()
	}
}

func UpdateStatus() fiber.Handler {
	return validators.Body[StatusRequest]("validatedStatus")
}

func List() fiber.Handler {
	return validators.Query[ListQuery]("validatedContactList")
}

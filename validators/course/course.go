package courseValidator

import (
	"strings"

	"lms/middleware"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type CreateCourseRequest struct {
	Title            string  `json:"title" validate:"required,min=3,max=200"`
	Description      string  `json:"description" validate:"required,min=5"`
	ShortDescription string  `json:"short_description" validate:"max=300"`
	CategoryID       *uint   `json:"category_id"`
	Price            float64 `json:"price" validate:"gte=0"`
	Difficulty       string  `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHours    int     `json:"duration_hours" validate:"gte=0"`
	Language         string  `json:"language" validate:"max=50"`
	ThumbnailURL     string  `json:"thumbnail_url" validate:"omitempty,url"`
	PreviewVideoURL  string  `json:"preview_video_url" validate:"omitempty,url"`
	Status           string  `json:"status" validate:"omitempty,oneof=draft published archived"`
	IsFeatured       bool    `json:"is_featured"`
}

type UpdateCourseRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string  `json:"description" validate:"omitempty,min=5"`
	ShortDescription *string  `json:"short_description" validate:"omitempty,max=300"`
	CategoryID       *uint    `json:"category_id"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	Difficulty       *string  `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHours    *int     `json:"duration_hours" validate:"omitempty,gte=0"`
	Language         *string  `json:"language" validate:"omitempty,max=50"`
	ThumbnailURL     *string  `json:"thumbnail_url" validate:"omitempty,url"`
	PreviewVideoURL  *string  `json:"preview_video_url" validate:"omitempty,url"`
	Status           *string  `json:"status" validate:"omitempty,oneof=draft published archived"`
	IsFeatured       *bool    `json:"is_featured"`
}

type CourseListQuery struct {
	Category   uint   `query:"category" json:"category"`
	Difficulty string `query:"difficulty" json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsFree     *bool  `query:"is_free" json:"is_free"`
	Search     string `query:"search" json:"search" validate:"max=200"`
	Ordering   string `query:"ordering" json:"ordering" validate:"omitempty,oneof=created_at -created_at price -price title -title average_rating -average_rating total_students -total_students"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func CreateCategory() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return validators.Body[UpdateCourseRequest]("validatedCourse")
}

func CourseList() fiber.Handler {
	return validators.Query[CourseListQuery]("validatedCourseList")
}

func CreateReview() fiber.Handler {
	return validators.Body[ReviewRequest]("validatedReview")
}

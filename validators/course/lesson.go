package courseValidator

import (
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateLessonRequest struct {
	Title           string   `json:"title" validate:"required,min=2,max=200"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	VideoURL        string   `json:"video_url" validate:"omitempty,url"`
	LessonType      string   `json:"lesson_type" validate:"omitempty,oneof=video text mixed"`
	Order           int      `json:"order" validate:"required,gte=1"`
	DurationMinutes int      `json:"duration_minutes" validate:"gte=0"`
	Resources       []string `json:"resources"`
	IsPublished     bool     `json:"is_published"`
}

type UpdateLessonRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=2,max=200"`
	Description     *string  `json:"description"`
	Content         *string  `json:"content"`
	VideoURL        *string  `json:"video_url" validate:"omitempty,url"`
	LessonType      *string  `json:"lesson_type" validate:"omitempty,oneof=video text mixed"`
	Order           *int     `json:"order" validate:"omitempty,gte=1"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,gte=0"`
	Resources       []string `json:"resources"`
	IsPublished     *bool    `json:"is_published"`
}

func CreateLesson() fiber.Handler {
	return validators.Body[CreateLessonRequest]("validatedLesson")
}

func UpdateLesson() fiber.Handler {
	return validators.Body[UpdateLessonRequest]("validatedLesson")
}

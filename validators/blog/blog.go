package blogValidator

import (
	"strings"

	"lms/middleware"
	"lms/validators"

	"github.com/gofiber/fiber/v2"
)

type PostRequest struct {
	Title           string `json:"title" validate:"required,min=3,max=200"`
	Content         string `json:"content" validate:"required,min=10"`
	Excerpt         string `json:"excerpt" validate:"max=300"`
	CategoryID      *uint  `json:"category_id"`
	TagIDs          []uint `json:"tag_ids" validate:"max=20"`
	FeaturedImage   string `json:"featured_image" validate:"omitempty,url"`
	MetaDescription string `json:"meta_description" validate:"max=160"`
	Status          string `json:"status" validate:"omitempty,oneof=draft published"`
}

type UpdatePostRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=3,max=200"`
	Content         *string `json:"content" validate:"omitempty,min=10"`
	Excerpt         *string `json:"excerpt" validate:"omitempty,max=300"`
	CategoryID      *uint   `json:"category_id"`
	TagIDs          *[]uint `json:"tag_ids" validate:"omitempty,max=20"`
	FeaturedImage   *string `json:"featured_image" validate:"omitempty,url"`
	MetaDescription *string `json:"meta_description" validate:"omitempty,max=160"`
	Status          *string `json:"status" validate:"omitempty,oneof=draft published"`
}

type PostListQuery struct {
	Category string `query:"category" json:"category" validate:"max=120"`
	Tag      string `query:"tag" json:"tag" validate:"max=60"`
	Search   string `query:"search" json:"search" validate:"max=200"`
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=draft published"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

type CommentRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Content string `json:"content" validate:"required,min=2,max=2000"`
}

func CreatePost() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PostRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPost", reqData)
		return c.Next()
	}
}

func UpdatePost() fiber.Handler {
	return validators.Body[UpdatePostRequest]("validatedPost")
}

func PostList() fiber.Handler {
	return validators.Query[PostListQuery]("validatedPostList")
}

func CreateCategory() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}

func CreateTag() fiber.Handler {
	return validators.Body[TagRequest]("validatedTag")
}

func CreateComment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CommentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Content = strings.TrimSpace(reqData.Content)

		if errors := validators.Struct(reqData); errors != nil {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedComment", reqData)
		return c.Next()
	}
}

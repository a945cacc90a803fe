package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns one message per failing field, nil when valid
func Struct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s!", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s!", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters!", fe.Param())
	case "numeric":
		return "Must contain digits only!"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "eqfield":
		return "Does not match " + fe.Param() + "!"
	case "url":
		return "Must be a valid URL!"
	case "dive":
		return "Contains an invalid entry!"
	}
	return "Invalid value!"
}

// Body parses the JSON body into a fresh T, validates it and stores it under key
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errs := Struct(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Query is Body for query strings
func Query[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.QueryParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errs := Struct(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Params rejects the request unless every named route param is a positive integer
func Params(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := make(map[string]string)
		for _, name := range names {
			if id, err := strconv.ParseUint(c.Params(name), 10, 64); err != nil || id == 0 {
				errs[name] = "Invalid " + strings.ReplaceAll(name, "_", " ") + "!"
			}
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		return c.Next()
	}
}

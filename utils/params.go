package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ParamUint reads a numeric route param; validators.Params has already checked it
func ParamUint(c *fiber.Ctx, name string) uint {
	id, _ := strconv.ParseUint(c.Params(name), 10, 64)
	return uint(id)
}

// UserID is the authenticated user set by the JWT middleware
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userId").(uint)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

package middleware

import (
	"fmt"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),                              // issued at
		"exp":    now.Add(config.AppConfig.JWTTTL).Unix(), // expiry
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}

	if err := authenticate(c, authHeader[len("Bearer "):]); err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, err.Error(), nil)
	}
	return c.Next()
}

// OptionalJWT identifies the caller when a valid bearer token is present and
// lets anonymous requests through unchanged
func OptionalJWT(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		_ = authenticate(c, authHeader[len("Bearer "):])
	}
	return c.Next()
}

type authError string

func (e authError) Error() string { return string(e) }

// authenticate verifies the token and stores the caller in Locals
func authenticate(c *fiber.Ctx, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return authError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return authError("Invalid token payload")
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && database.Database.Db != nil {
		var count int64
		database.Database.Db.Model(&models.TokenBlacklist{}).Where("jti = ?", jti).Count(&count)
		if count > 0 {
			return authError("Token has been revoked")
		}
	}

	// JWT numbers decode as float64
	userID, _ := claims["userId"].(float64)
	role, _ := claims["role"].(string)
	exp, _ := claims["exp"].(float64)

	c.Locals("userId", uint(userID))
	c.Locals("role", role)
	c.Locals("jti", jti)
	c.Locals("tokenExp", time.Unix(int64(exp), 0))
	return nil
}

// RequireRole lets the request through only for the listed roles; run after JWTMiddleware
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

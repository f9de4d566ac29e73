package middleware

import (
	"fmt"
	"strings"
	"time"

	"paddock/apperrors"
	"paddock/config"
	"paddock/database"
	"paddock/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, name, role, email string) (string, error) {
	ttl := time.Duration(config.AppConfig.JWTTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// parseBearer validates the Authorization header and returns the claims.
func parseBearer(c *fiber.Ctx) (jwt.MapClaims, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, "Missing or invalid Authorization header"
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "Invalid Authorization header format"
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["userId"] == nil {
		return nil, "Invalid token payload"
	}
	if _, ok := claims["userId"].(float64); !ok {
		return nil, "Invalid token payload"
	}
	return claims, ""
}

func storeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	// JWT numbers decode as float64
	userID := claims["userId"].(float64)
	c.Locals("userId", uint(userID))
	if role, ok := claims["role"].(string); ok {
		c.Locals("role", role)
	}
}

// tokenHolder loads the account behind the claims. Tokens of deleted
// accounts stop working at once, tokens of blocked ones while the block lasts.
func tokenHolder(claims jwt.MapClaims) (int, string) {
	var user models.User
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", uint(claims["userId"].(float64)), false).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.StatusUnauthorized, "Account not found!"
		}
		return fiber.StatusInternalServerError, "Something went wrong, please try again!"
	}
	if user.IsSuspended(time.Now()) {
		return fiber.StatusForbidden, "Your account has been blocked, please contact support!"
	}
	return fiber.StatusOK, ""
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	claims, problem := parseBearer(c)
	if problem != "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, problem, nil)
	}
	if status, problem := tokenHolder(claims); problem != "" {
		return JsonResponse(c, status, false, problem, nil)
	}

	storeClaims(c, claims)
	return c.Next()
}

// OptionalJWTMiddleware identifies the caller when a valid token is sent and
// lets anonymous requests through otherwise. Blocked callers browse anonymously.
func OptionalJWTMiddleware(c *fiber.Ctx) error {
	if claims, problem := parseBearer(c); problem == "" {
		if _, problem := tokenHolder(claims); problem == "" {
			storeClaims(c, claims)
		}
	}
	return c.Next()
}

// CurrentUserID returns the authenticated user id, or 0 for anonymous callers.
func CurrentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userId").(uint)
	return userID
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

// ErrorResponse renders a domain error with the status mapped from it. The
// message is used for client facing text; internal errors get a generic one.
func ErrorResponse(c *fiber.Ctx, err error, message string) error {
	status := apperrors.HTTPStatus(err)
	if message == "" && err != nil {
		message = err.Error()
	}
	if status == fiber.StatusInternalServerError {
		message = "Something went wrong, please try again!"
	}
	return JsonResponse(c, status, false, message, nil)
}

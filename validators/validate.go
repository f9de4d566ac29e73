package validators

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"paddock/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v using its `validate` tags and returns field -> message.
// An empty map means the value is valid.
func Struct(v interface{}) map[string]string {
	errors := make(map[string]string)

	err := instance().Struct(v)
	if err == nil {
		return errors
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = "Invalid request!"
		return errors
	}

	for _, fe := range validationErrors {
		errors[fe.Field()] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "email":
		return "Invalid email!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", fe.Field(), fe.Param())
	case "gte", "gt":
		return fmt.Sprintf("%s must be greater than %s!", fe.Field(), fe.Param())
	case "lte", "lt":
		return fmt.Sprintf("%s must be less than %s!", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format!", fe.Field(), fe.Param())
	case "dive":
		return fmt.Sprintf("%s contains an invalid value!", fe.Field())
	}
	return fmt.Sprintf("%s is invalid!", fe.Field())
}

// Body parses the JSON body into a new T, validates it and stores it in
// c.Locals(local). checks run after tag validation and may add errors.
// An empty body validates the zero value.
func Body[T any](local string, checks ...func(*T, map[string]string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		return finish(c, local, reqData, checks)
	}
}

// Query is Body for query string parameters.
func Query[T any](local string, checks ...func(*T, map[string]string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		return finish(c, local, reqData, checks)
	}
}

func finish[T any](c *fiber.Ctx, local string, reqData *T, checks []func(*T, map[string]string)) error {
	errors := Struct(reqData)
	for _, check := range checks {
		check(reqData, errors)
	}
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	c.Locals(local, reqData)
	return c.Next()
}

// PageQuery is the common page/limit pair of list endpoints.
type PageQuery struct {
	Page   int    `query:"page" json:"page" validate:"omitempty,gte=1,lte=100000"`
	Limit  int    `query:"limit" json:"limit" validate:"omitempty,gte=1"`
	Status string `query:"status" json:"status"`
}

// Page validates list pagination into c.Locals("validatedPage").
func Page() fiber.Handler {
	return Query[PageQuery]("validatedPage")
}

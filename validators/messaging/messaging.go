package messagingValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

const maxMessageLength = 2000

type StartConversationRequest struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	VehicleID   uint   `json:"vehicleId"`
	Message     string `json:"message" validate:"required,max=2000"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// blank reports messages that are only whitespace.
func blank(field, value string, errors map[string]string) {
	if _, bad := errors[field]; !bad && value == "" {
		errors[field] = field + " is required!"
	}
}

func StartConversation() fiber.Handler {
	return validators.Body("validatedConversation", func(r *StartConversationRequest, errors map[string]string) {
		r.Message = strings.TrimSpace(r.Message)
		blank("message", r.Message, errors)
	})
}

func SendMessage() fiber.Handler {
	return validators.Body("validatedMessage", func(r *SendMessageRequest, errors map[string]string) {
		r.Body = strings.TrimSpace(r.Body)
		blank("body", r.Body, errors)
		if len([]rune(r.Body)) > maxMessageLength {
			errors["body"] = "body must be at most 2000 characters long!"
		}
	})
}

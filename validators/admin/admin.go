package adminValidator

import (
	"strings"

	"paddock/models"
	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateReportRequest struct {
	TargetType  string `json:"targetType" validate:"required,oneof=user vehicle driver team"`
	TargetID    uint   `json:"targetId" validate:"required"`
	Reason      string `json:"reason" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type UpdateReportRequest struct {
	Status string `json:"status" validate:"required,oneof=reviewed resolved dismissed"`
	Note   string `json:"note" validate:"max=2000"`
}

type BlockUserRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

// UserListQuery pages the admin user list with an optional name/email search.
type UserListQuery struct {
	Page  int    `query:"page" json:"page" validate:"omitempty,gte=1,lte=100000"`
	Limit int    `query:"limit" json:"limit" validate:"omitempty,gte=1"`
	Q     string `query:"q" json:"q" validate:"max=100"`
}

func CreateReport() fiber.Handler {
	return validators.Body("validatedReport", func(r *CreateReportRequest, _ map[string]string) {
		r.TargetType = strings.ToLower(strings.TrimSpace(r.TargetType))
		r.Reason = strings.TrimSpace(r.Reason)
	})
}

func UpdateReport() fiber.Handler {
	return validators.Body("validatedReport", func(r *UpdateReportRequest, _ map[string]string) {
		r.Note = strings.TrimSpace(r.Note)
	})
}

func BlockUser() fiber.Handler {
	return validators.Body[BlockUserRequest]("validatedBlock")
}

func ListReports() fiber.Handler {
	return validators.Query("validatedPage", func(r *validators.PageQuery, errors map[string]string) {
		switch r.Status {
		case "", models.ReportPending, models.ReportReviewed, models.ReportResolved, models.ReportDismissed:
		default:
			errors["status"] = "status must be one of: pending, reviewed, resolved, dismissed!"
		}
	})
}

func UserList() fiber.Handler {
	return validators.Query("validatedUserList", func(r *UserListQuery, _ map[string]string) {
		r.Q = strings.TrimSpace(r.Q)
	})
}

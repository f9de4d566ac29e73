package models

import "gorm.io/gorm"

const (
	ReportTargetUser    = "user"
	ReportTargetVehicle = "vehicle"
	ReportTargetDriver  = "driver"
	ReportTargetTeam    = "team"
)

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

type Report struct {
	gorm.Model
	ReporterID  uint   `gorm:"not null;index" json:"reporterId"`
	TargetType  string `gorm:"type:varchar(20);not null" json:"targetType"`
	TargetID    uint   `gorm:"not null" json:"targetId"`
	Reason      string `gorm:"not null" json:"reason"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNote   string `gorm:"type:text" json:"adminNote"`
}

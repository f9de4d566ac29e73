package motorsports

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DriverProfile struct {
	gorm.Model
	UserID           uint                        `gorm:"not null;uniqueIndex" json:"userId"`
	DisplayName      string                      `gorm:"size:100;not null" json:"displayName"`
	Bio              string                      `gorm:"type:text" json:"bio"`
	ExperienceYears  int                         `gorm:"default:0" json:"experienceYears"`
	LicenseClass     string                      `gorm:"size:50" json:"licenseClass"`
	Disciplines      datatypes.JSONSlice[string] `json:"disciplines"`
	City             string                      `gorm:"size:80" json:"city"`
	State            string                      `gorm:"size:80" json:"state"`
	LookingForTeam   bool                        `gorm:"default:false" json:"lookingForTeam"`
	Achievements     string                      `gorm:"type:text" json:"achievements"`
	EndorsementCount int                         `gorm:"default:0" json:"endorsementCount"`
	IsDeleted        bool                        `gorm:"default:false" json:"-"`
}

type Endorsement struct {
	gorm.Model
	EndorserID      uint   `gorm:"not null;uniqueIndex:idx_endorsement_pair" json:"endorserId"`
	DriverProfileID uint   `gorm:"not null;uniqueIndex:idx_endorsement_pair" json:"driverProfileId"`
	Comment         string `gorm:"type:text" json:"comment"`
}

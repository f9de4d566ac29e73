package motorsports

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TeamProfile struct {
	gorm.Model
	OwnerID            uint                        `gorm:"not null;index" json:"ownerId"`
	Name               string                      `gorm:"size:120;not null" json:"name"`
	Description        string                      `gorm:"type:text" json:"description"`
	Disciplines        datatypes.JSONSlice[string] `json:"disciplines"`
	City               string                      `gorm:"size:80" json:"city"`
	State              string                      `gorm:"size:80" json:"state"`
	Series             string                      `gorm:"size:120" json:"series"`
	Recruiting         bool                        `gorm:"default:false" json:"recruiting"`
	MinExperienceYears int                         `gorm:"default:0" json:"minExperienceYears"`
	IsDeleted          bool                        `gorm:"default:false" json:"-"`
}

package motorsportsValidator

import (
	"strings"

	"paddock/validators"

	"github.com/gofiber/fiber/v2"
)

type DriverProfileRequest struct {
	DisplayName     string   `json:"displayName" validate:"required,min=2,max=100"`
	Bio             string   `json:"bio" validate:"max=2000"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0,lte=80"`
	LicenseClass    string   `json:"licenseClass" validate:"max=50"`
	Disciplines     []string `json:"disciplines" validate:"max=20,dive,required,max=50"`
	City            string   `json:"city" validate:"max=80"`
	State           string   `json:"state" validate:"max=80"`
	LookingForTeam  bool     `json:"lookingForTeam"`
	Achievements    string   `json:"achievements" validate:"max=5000"`
}

type CreateTeamRequest struct {
	Name               string   `json:"name" validate:"required,min=2,max=120"`
	Description        string   `json:"description" validate:"max=5000"`
	Disciplines        []string `json:"disciplines" validate:"max=20,dive,required,max=50"`
	City               string   `json:"city" validate:"max=80"`
	State              string   `json:"state" validate:"max=80"`
	Series             string   `json:"series" validate:"max=120"`
	Recruiting         bool     `json:"recruiting"`
	MinExperienceYears int      `json:"minExperienceYears" validate:"gte=0,lte=80"`
}

type UpdateTeamRequest struct {
	Name               *string   `json:"name" validate:"omitempty,min=2,max=120"`
	Description        *string   `json:"description" validate:"omitempty,max=5000"`
	Disciplines        *[]string `json:"disciplines" validate:"omitempty,max=20,dive,required,max=50"`
	City               *string   `json:"city" validate:"omitempty,max=80"`
	State              *string   `json:"state" validate:"omitempty,max=80"`
	Series             *string   `json:"series" validate:"omitempty,max=120"`
	Recruiting         *bool     `json:"recruiting"`
	MinExperienceYears *int      `json:"minExperienceYears" validate:"omitempty,gte=0,lte=80"`
}

type EndorseRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

// DirectoryQuery filters the driver and team directories.
type DirectoryQuery struct {
	Page       int    `query:"page" json:"page" validate:"omitempty,gte=1,lte=100000"`
	Limit      int    `query:"limit" json:"limit" validate:"omitempty,gte=1"`
	Discipline string `query:"discipline" json:"discipline"`
	State      string `query:"state" json:"state"`
	Flag       string `query:"-" json:"-"`
}

type MatchQuery struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,gte=1"`
}

// normaliseDisciplines trims values and drops duplicates, keeping order.
func normaliseDisciplines(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, d := range in {
		d = strings.TrimSpace(d)
		key := strings.ToLower(d)
		if d == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

func DriverProfile() fiber.Handler {
	return validators.Body("validatedDriver", func(r *DriverProfileRequest, _ map[string]string) {
		r.DisplayName = strings.TrimSpace(r.DisplayName)
		r.Disciplines = normaliseDisciplines(r.Disciplines)
	})
}

func CreateTeam() fiber.Handler {
	return validators.Body("validatedTeam", func(r *CreateTeamRequest, _ map[string]string) {
		r.Name = strings.TrimSpace(r.Name)
		r.Disciplines = normaliseDisciplines(r.Disciplines)
	})
}

func UpdateTeam() fiber.Handler {
	return validators.Body("validatedTeam", func(r *UpdateTeamRequest, _ map[string]string) {
		if r.Name != nil {
			name := strings.TrimSpace(*r.Name)
			r.Name = &name
		}
		if r.Disciplines != nil {
			d := normaliseDisciplines(*r.Disciplines)
			r.Disciplines = &d
		}
	})
}

func Endorse() fiber.Handler {
	return validators.Body("validatedEndorsement", func(r *EndorseRequest, _ map[string]string) {
		r.Comment = strings.TrimSpace(r.Comment)
	})
}

// Directory reads the yes/no filter from flagParam, lookingForTeam for
// drivers and recruiting for teams.
func Directory(flagParam string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validators.Query("validatedDirectory", func(r *DirectoryQuery, errors map[string]string) {
			r.Flag = strings.ToLower(strings.TrimSpace(c.Query(flagParam)))
			if r.Flag != "" && r.Flag != "true" && r.Flag != "false" {
				errors[flagParam] = flagParam + " must be true or false!"
			}
		})(c)
	}
}

func Matches() fiber.Handler {
	return validators.Query[MatchQuery]("validatedMatch")
}

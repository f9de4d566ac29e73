package utils

import (
	"math"
	"sort"
	"strings"

	"paddock/models/motorsports"
)

const (
	DefaultMatchLimit = 10
	MaxMatchLimit     = 50

	maxEndorsementBonus = 2.0
)

// TeamMatch is a team ranked for a driver.
type TeamMatch struct {
	Team  motorsports.TeamProfile `json:"team"`
	Score float64                 `json:"score"`
}

// DriverMatch is a driver ranked for a team.
type DriverMatch struct {
	Driver motorsports.DriverProfile `json:"driver"`
	Score  float64                   `json:"score"`
}

// MatchScore adds up how well a driver fits a team.
func MatchScore(d motorsports.DriverProfile, t motorsports.TeamProfile) float64 {
	score := 3 * float64(sharedDisciplines(d.Disciplines, t.Disciplines))

	// city names repeat across states, so the city only counts within one
	if sameText(d.State, t.State) {
		score += 2
		if sameText(d.City, t.City) {
			score += 1
		}
	}
	if d.LookingForTeam && t.Recruiting {
		score += 2
	}
	if d.ExperienceYears >= t.MinExperienceYears {
		score += 1
	} else {
		score -= 2
	}
	score += math.Min(0.5*float64(d.EndorsementCount), maxEndorsementBonus)

	return score
}

func sharedDisciplines(a, b []string) int {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		if k := strings.ToLower(strings.TrimSpace(s)); k != "" {
			seen[k] = true
		}
	}
	shared := 0
	for _, s := range b {
		k := strings.ToLower(strings.TrimSpace(s))
		if seen[k] {
			shared++
			delete(seen, k)
		}
	}
	return shared
}

func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// MatchLimit clamps a requested result count.
func MatchLimit(limit int) int {
	if limit < 1 {
		return DefaultMatchLimit
	}
	if limit > MaxMatchLimit {
		return MaxMatchLimit
	}
	return limit
}

// RankTeamsForDriver scores teams for the driver. Teams owned by callerID and
// non-positive scores are left out.
func RankTeamsForDriver(d motorsports.DriverProfile, teams []motorsports.TeamProfile, callerID uint, limit int) []TeamMatch {
	matches := make([]TeamMatch, 0, len(teams))
	for _, t := range teams {
		if t.IsDeleted || t.OwnerID == callerID {
			continue
		}
		if score := MatchScore(d, t); score > 0 {
			matches = append(matches, TeamMatch{Team: t, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Team.ID < matches[j].Team.ID
	})

	if limit = MatchLimit(limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// RankDriversForTeam scores drivers for the team, leaving out the caller's
// own profile.
func RankDriversForTeam(t motorsports.TeamProfile, drivers []motorsports.DriverProfile, callerID uint, limit int) []DriverMatch {
	matches := make([]DriverMatch, 0, len(drivers))
	for _, d := range drivers {
		if d.IsDeleted || d.UserID == callerID {
			continue
		}
		if score := MatchScore(d, t); score > 0 {
			matches = append(matches, DriverMatch{Driver: d, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Driver.ID < matches[j].Driver.ID
	})

	if limit = MatchLimit(limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

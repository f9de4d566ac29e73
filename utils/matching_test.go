package utils

import (
	"testing"

	"paddock/models/motorsports"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func driver(id, userID uint, years, endorsements int, disciplines ...string) motorsports.DriverProfile {
	return motorsports.DriverProfile{
		Model:            gorm.Model{ID: id},
		UserID:           userID,
		DisplayName:      "driver",
		ExperienceYears:  years,
		EndorsementCount: endorsements,
		Disciplines:      datatypes.JSONSlice[string](disciplines),
		City:             "Sebring",
		State:            "FL",
		LookingForTeam:   true,
	}
}

func team(id, ownerID uint, minYears int, disciplines ...string) motorsports.TeamProfile {
	return motorsports.TeamProfile{
		Model:              gorm.Model{ID: id},
		OwnerID:            ownerID,
		Name:               "team",
		Disciplines:        datatypes.JSONSlice[string](disciplines),
		City:               "Sebring",
		State:              "FL",
		Recruiting:         true,
		MinExperienceYears: minYears,
	}
}

func TestMatchScore(t *testing.T) {
	d := driver(1, 10, 5, 2, "Endurance", "GT")
	tm := team(1, 20, 3, "gt", "endurance", "karting")

	// 2 shared disciplines (6) + state (2) + city (1) + looking/recruiting (2) + experience (1) + endorsements (1)
	assert.Equal(t, 13.0, MatchScore(d, tm))

	d.EndorsementCount = 10
	assert.Equal(t, 14.0, MatchScore(d, tm), "endorsement bonus is capped at 2")

	d.ExperienceYears = 1
	assert.Equal(t, 11.0, MatchScore(d, tm), "below the minimum costs 2")

	d.City = "Daytona"
	d.LookingForTeam = false
	assert.Equal(t, 8.0, MatchScore(d, tm))
}

func TestMatchScoreCityNeedsSameState(t *testing.T) {
	d := driver(1, 10, 0, 0)
	tm := team(1, 20, 0)
	d.LookingForTeam = false
	d.City, tm.City = "Portland", "portland"
	d.State, tm.State = "OR", "ME"

	// experience only, the shared city name is in another state
	assert.Equal(t, 1.0, MatchScore(d, tm))

	tm.State = "or"
	assert.Equal(t, 4.0, MatchScore(d, tm))
}

func TestMatchScoreIgnoresBlankLocation(t *testing.T) {
	d := driver(1, 10, 0, 0)
	tm := team(1, 20, 0)
	d.City, d.State, tm.City, tm.State = "", "", "", ""
	d.LookingForTeam = false

	assert.Equal(t, 1.0, MatchScore(d, tm))
}

func TestRankTeamsForDriver(t *testing.T) {
	d := driver(1, 10, 2, 0, "rally")
	teams := []motorsports.TeamProfile{
		team(1, 20, 0, "drift"),
		team(2, 21, 0, "rally"),
		team(3, 10, 0, "rally"), // owned by the driver
		team(4, 22, 10, "drift"),
		team(5, 23, 0, "rally"),
	}
	teams[3].City, teams[3].State, teams[3].Recruiting = "", "", false

	matches := RankTeamsForDriver(d, teams, 10, 0)
	got := make([]uint, 0, len(matches))
	for _, m := range matches {
		got = append(got, m.Team.ID)
	}
	// team 4 scores -2 and is dropped; ties sort by id
	assert.Equal(t, []uint{2, 5, 1}, got)
	assert.Equal(t, 9.0, matches[0].Score)

	assert.Len(t, RankTeamsForDriver(d, teams, 10, 1), 1)
}

func TestRankDriversForTeam(t *testing.T) {
	tm := team(1, 99, 3, "formula")
	drivers := []motorsports.DriverProfile{
		driver(1, 10, 5, 4, "formula"),
		driver(2, 11, 5, 0, "formula"),
		driver(3, 99, 9, 4, "formula"), // the team owner
	}

	matches := RankDriversForTeam(tm, drivers, 99, 10)
	if assert.Len(t, matches, 2) {
		assert.Equal(t, uint(1), matches[0].Driver.ID)
		assert.Equal(t, uint(2), matches[1].Driver.ID)
		assert.Equal(t, 2.0, matches[0].Score-matches[1].Score)
	}
}

func TestMatchLimit(t *testing.T) {
	assert.Equal(t, DefaultMatchLimit, MatchLimit(0))
	assert.Equal(t, 5, MatchLimit(5))
	assert.Equal(t, MaxMatchLimit, MatchLimit(500))
}

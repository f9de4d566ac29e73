package motorsportsController

import (
	"errors"
	"fmt"
	"strings"

	"paddock/apperrors"
	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models/motorsports"
	"paddock/utils"
	motorsportsValidator "paddock/validators/motorsports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func findTeam(db *gorm.DB, id uint) (motorsports.TeamProfile, error) {
	var team motorsports.TeamProfile
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return team, fmt.Errorf("team %d: %w", id, apperrors.ErrNotFound)
	}
	return team, err
}

func findOwnedTeam(db *gorm.DB, id, userID uint) (motorsports.TeamProfile, error) {
	team, err := findTeam(db, id)
	if err != nil {
		return team, err
	}
	if team.OwnerID != userID {
		return team, fmt.Errorf("team %d: %w", id, apperrors.ErrForbidden)
	}
	return team, nil
}

func CreateTeam(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedTeam").(*motorsportsValidator.CreateTeamRequest)

	team := motorsports.TeamProfile{
		OwnerID:            userId,
		Name:               reqData.Name,
		Description:        reqData.Description,
		Disciplines:        disciplines(reqData.Disciplines),
		City:               reqData.City,
		State:              reqData.State,
		Series:             reqData.Series,
		Recruiting:         reqData.Recruiting,
		MinExperienceYears: reqData.MinExperienceYears,
	}
	if err := database.Database.Db.Create(&team).Error; err != nil {
		logger.Log.Error("error creating team", logger.Uint("ownerId", userId), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create team!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Team created.", team)
}

func UpdateTeam(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid team id!")
	}
	reqData := c.Locals("validatedTeam").(*motorsportsValidator.UpdateTeamRequest)
	db := database.Database.Db

	team, err := findOwnedTeam(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	updates := map[string]interface{}{}
	if reqData.Name != nil {
		updates["name"] = *reqData.Name
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Disciplines != nil {
		updates["disciplines"] = disciplines(*reqData.Disciplines)
	}
	if reqData.City != nil {
		updates["city"] = *reqData.City
	}
	if reqData.State != nil {
		updates["state"] = *reqData.State
	}
	if reqData.Series != nil {
		updates["series"] = *reqData.Series
	}
	if reqData.Recruiting != nil {
		updates["recruiting"] = *reqData.Recruiting
	}
	if reqData.MinExperienceYears != nil {
		updates["min_experience_years"] = *reqData.MinExperienceYears
	}

	if len(updates) > 0 {
		if err := db.Model(&motorsports.TeamProfile{}).Where("id = ?", team.ID).Updates(updates).Error; err != nil {
			logger.Log.Error("error updating team", logger.Uint("teamId", team.ID), logger.Error(err))
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update team!", nil)
		}
	}

	db.First(&team, team.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team updated.", team)
}

func DeleteTeam(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid team id!")
	}
	db := database.Database.Db

	team, err := findOwnedTeam(db, id, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	if err := db.Model(&motorsports.TeamProfile{}).Where("id = ?", team.ID).Updates(map[string]interface{}{
		"is_deleted": true,
		"recruiting": false,
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team deleted.", nil)
}

func GetTeam(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid team id!")
	}
	team, err := findTeam(database.Database.Db, id)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Team not found!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Team profile.", team)
}

func ListTeams(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDirectory").(*motorsportsValidator.DirectoryQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 12, 50)

	query := database.Database.Db.Where("is_deleted = ?", false)
	if state := strings.TrimSpace(reqData.State); state != "" {
		query = query.Where("LOWER(state) = ?", strings.ToLower(state))
	}
	if reqData.Flag != "" {
		query = query.Where("recruiting = ?", reqData.Flag == "true")
	}

	var all []motorsports.TeamProfile
	if err := query.Order("created_at DESC, id DESC").Find(&all).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	teams := make([]motorsports.TeamProfile, 0, len(all))
	discipline := strings.TrimSpace(reqData.Discipline)
	for _, t := range all {
		if discipline == "" || hasDiscipline(t.Disciplines, discipline) {
			teams = append(teams, t)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Teams.", fiber.Map{
		"teams":      pageOf(teams, page),
		"pagination": page.Meta(int64(len(teams))),
	})
}

// TeamMatches ranks drivers for a team. Only the team owner may ask.
func TeamMatches(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid team id!")
	}
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedMatch").(*motorsportsValidator.MatchQuery)
	db := database.Database.Db

	team, err := findOwnedTeam(db, id, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	var drivers []motorsports.DriverProfile
	if err := db.Where("is_deleted = ?", false).Find(&drivers).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Driver matches.",
		utils.RankDriversForTeam(team, drivers, userId, reqData.Limit))
}

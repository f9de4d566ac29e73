package routers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paddock/config"
	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedFile(url string) string {
	return filepath.Join(config.AppConfig.UploadDir, filepath.FromSlash(strings.TrimPrefix(url, "/uploads/")))
}

func TestProfileReadAndUpdate(t *testing.T) {
	e := setup(t)
	_, token := e.member("jo", models.RoleUser)

	status, _ := e.do("GET", "/user/me", "", nil)
	assert.Equal(t, 401, status)

	status, body := e.do("GET", "/user/me", token, nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, "jo", data(body)["name"])
	assert.Equal(t, "jo@example.com", data(body)["email"])
	assert.NotContains(t, data(body), "password")

	status, _ = e.do("PUT", "/user/me", token, map[string]string{"name": "   "})
	assert.Equal(t, 422, status, "blank name")
	status, _ = e.do("PUT", "/user/me", token, map[string]string{"mobile": "12ab"})
	assert.Equal(t, 422, status)

	status, body = e.do("PUT", "/user/me", token, map[string]string{
		"name":  " Jo Siffert ",
		"bio":   "Club racer",
		"city":  " Sebring ",
		"state": "FL",
	})
	require.Equal(t, 200, status, body)
	assert.Equal(t, "Jo Siffert", data(body)["name"])
	assert.Equal(t, "Sebring", data(body)["city"])
	assert.Equal(t, "Club racer", data(body)["bio"])

	// fields left out keep their value
	status, body = e.do("PUT", "/user/me", token, map[string]string{"bio": "Endurance"})
	require.Equal(t, 200, status, body)
	assert.Equal(t, "Jo Siffert", data(body)["name"])
	assert.Equal(t, "Endurance", data(body)["bio"])
}

func TestAvatarUpload(t *testing.T) {
	e := setup(t)
	user, token := e.member("jo", models.RoleUser)

	status, _ := e.upload("/user/me/avatar", token, "", nil)
	assert.Equal(t, 400, status, "missing file")
	status, _ = e.upload("/user/me/avatar", token, "me.png", []byte("plain text, not an image"))
	assert.Equal(t, 400, status, "sniffed type wins over the extension")

	status, body := e.upload("/user/me/avatar", token, "me.gif", pngBytes)
	require.Equal(t, 200, status, body)
	first := data(body)["profileImage"].(string)
	assert.True(t, strings.HasPrefix(first, "/uploads/avatars/"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	stored, err := os.ReadFile(uploadedFile(first))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	status, body = e.upload("/user/me/avatar", token, "me.png", pngBytes)
	require.Equal(t, 200, status, body)
	second := data(body)["profileImage"].(string)
	assert.NotEqual(t, first, second)
	_, err = os.Stat(uploadedFile(first))
	assert.True(t, os.IsNotExist(err), "the previous avatar is removed")

	var saved models.User
	require.NoError(t, e.db.First(&saved, user.ID).Error)
	assert.Equal(t, second, saved.ProfileImage)
}

func TestPublicProfile(t *testing.T) {
	e := setup(t)
	owner, _ := e.member("owner", models.RoleUser)
	renter, _ := e.member("renter", models.RoleUser)

	e.vehicle(owner, 10000)
	parked := e.vehicle(owner, 20000)
	require.NoError(t, e.db.Model(&parked).Update("is_active", false).Error)

	reviews := []models.Review{
		{ReservationID: 1, VehicleID: parked.ID, ReviewerID: renter.ID, OwnerID: owner.ID, Rating: 5},
		{ReservationID: 2, VehicleID: parked.ID, ReviewerID: renter.ID, OwnerID: owner.ID, Rating: 4},
		{ReservationID: 3, VehicleID: parked.ID, ReviewerID: renter.ID, OwnerID: owner.ID, Rating: 1, IsDeleted: true},
	}
	require.NoError(t, e.db.Omit("Reviewer").Create(&reviews).Error)

	status, body := e.do("GET", "/user/"+itoa(owner.ID), "", nil)
	require.Equal(t, 200, status, body)
	profile := data(body)
	assert.Equal(t, "owner", profile["name"])
	assert.Equal(t, float64(1), profile["listingCount"], "inactive listings are not counted")
	assert.Equal(t, float64(2), profile["reviewCount"])
	assert.Equal(t, 4.5, profile["averageRating"])
	assert.NotContains(t, profile, "email")

	status, body = e.do("GET", "/user/"+itoa(renter.ID), "", nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, float64(0), data(body)["averageRating"])

	status, _ = e.do("GET", "/user/999", "", nil)
	assert.Equal(t, 404, status)
}

package routers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"paddock/config"
	"paddock/database"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	config.LoadConfig()
	config.AppConfig.JWTKey = "test-secret"
	config.AppConfig.SaltRound = 4
	config.AppConfig.UploadDir = t.TempDir()
	config.AppConfig.PaymentWebhookSecret = "whsec_test"
	config.AppConfig.PlatformFeePercent = 10
	config.AppConfig.RateLimitMax = 100

	db, err := database.OpenSqlite(t.Name())
	require.NoError(t, err)

	utils.DefaultPayments = utils.NewPaymentClient("", "")
	utils.DefaultGeocoder = utils.NewGeocoder("", "")
	t.Cleanup(func() {
		utils.DefaultPayments = utils.NewPaymentClient("", "")
	})

	return &testEnv{t: t, app: NewApp(), db: db}
}

// member creates a user and returns it with a bearer token.
func (e *testEnv) member(name, role string) (models.User, string) {
	e.t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "x",
		Role:     role,
	}
	require.NoError(e.t, e.db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) vehicle(owner models.User, rateCents int64) models.Vehicle {
	e.t.Helper()
	v := models.Vehicle{
		OwnerID:        owner.ID,
		Title:          "Porsche 911 GT3 Cup",
		Make:           "Porsche",
		VehicleModel:   "911 GT3 Cup",
		Year:           2021,
		Category:       models.CategoryRaceCar,
		Transmission:   models.TransmissionSequential,
		DailyRateCents: rateCents,
		MinRentalDays:  1,
		IsActive:       true,
	}
	require.NoError(e.t, e.db.Create(&v).Error)
	return v
}

func (e *testEnv) reservation(v models.Vehicle, renter models.User, status string, start, end time.Time) models.Reservation {
	e.t.Helper()
	days := utils.DaysInclusive(start, end)
	r := models.Reservation{
		VehicleID:      v.ID,
		RenterID:       renter.ID,
		OwnerID:        v.OwnerID,
		StartDate:      start,
		EndDate:        end,
		Days:           days,
		DailyRateCents: v.DailyRateCents,
		SubtotalCents:  int64(days) * v.DailyRateCents,
		TotalCents:     int64(days) * v.DailyRateCents,
		Status:         status,
		PaymentStatus:  models.PaymentUnpaid,
	}
	require.NoError(e.t, e.db.Omit("Vehicle", "Renter", "Owner").Create(&r).Error)
	return r
}

// do sends a JSON request and decodes the response envelope.
func (e *testEnv) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	e.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(e.t, err)
	}
	return e.raw(method, path, token, payload, nil)
}

func (e *testEnv) raw(method, path, token string, payload []byte, headers map[string]string) (int, map[string]interface{}) {
	e.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// upload posts content as the multipart "image" field.
func (e *testEnv) upload(path, token, filename string, content []byte) (int, map[string]interface{}) {
	e.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if content != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	} else {
		require.NoError(e.t, w.WriteField("caption", "no file"))
	}
	require.NoError(e.t, w.Close())
	return e.raw("POST", path, token, body.Bytes(), map[string]string{"Content-Type": w.FormDataContentType()})
}

func data(body map[string]interface{}) map[string]interface{} {
	d, _ := body["data"].(map[string]interface{})
	return d
}

func day(offset int) time.Time {
	return utils.Today(time.Now()).AddDate(0, 0, offset)
}

func dayString(offset int) string {
	return day(offset).Format(utils.DayLayout)
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

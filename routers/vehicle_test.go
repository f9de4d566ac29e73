package routers

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestVehicleListingLifecycle(t *testing.T) {
	e := setup(t)
	_, ownerToken := e.member("owner", models.RoleUser)
	_, otherToken := e.member("other", models.RoleUser)

	listing := map[string]interface{}{
		"title":          "  Radical SR3 ",
		"make":           "Radical",
		"year":           2019,
		"category":       "race_car",
		"dailyRateCents": 85000,
		"city":           "Sonoma",
		"state":          "CA",
		"latitude":       38.16,
		"longitude":      -122.45,
		"features":       []string{"data logger"},
	}
	status, body := e.do("POST", "/vehicles", ownerToken, listing)
	require.Equal(t, 201, status, body)
	created := data(body)
	id := itoa(uint(created["ID"].(float64)))
	assert.Equal(t, "Radical SR3", created["title"])
	assert.Equal(t, "race_car", created["category"])
	assert.Equal(t, "manual", created["transmission"])
	assert.Equal(t, float64(1), created["minRentalDays"])

	delete(listing, "longitude")
	status, _ = e.do("POST", "/vehicles", ownerToken, listing)
	assert.Equal(t, 422, status, "coordinates come in pairs")

	status, _ = e.do("PUT", "/vehicles/"+id, otherToken, map[string]interface{}{"dailyRateCents": 1})
	assert.Equal(t, 403, status)
	status, body = e.do("PUT", "/vehicles/"+id, ownerToken, map[string]interface{}{"dailyRateCents": 90000})
	require.Equal(t, 200, status, body)
	assert.Equal(t, float64(90000), data(body)["dailyRateCents"])

	status, body = e.do("PATCH", "/vehicles/"+id+"/status", ownerToken, map[string]bool{"isActive": false})
	require.Equal(t, 200, status, body)
	assert.Equal(t, false, data(body)["isActive"])

	status, _ = e.do("GET", "/vehicles/"+id, otherToken, nil)
	assert.Equal(t, 404, status, "paused listings are hidden from others")
	status, body = e.do("GET", "/vehicles/"+id, ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "owner", data(body)["owner"].(map[string]interface{})["name"])

	status, body = e.do("GET", "/vehicles", "", nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["vehicles"], 0)

	status, _ = e.do("PATCH", "/vehicles/"+id+"/status", ownerToken, map[string]bool{"isActive": true})
	require.Equal(t, 200, status)

	status, body = e.do("GET", "/vehicles/mine", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 1)

	status, _ = e.do("DELETE", "/vehicles/"+id, otherToken, nil)
	assert.Equal(t, 403, status)
	status, _ = e.do("DELETE", "/vehicles/"+id, ownerToken, nil)
	require.Equal(t, 200, status)
	status, _ = e.do("GET", "/vehicles/"+id, ownerToken, nil)
	assert.Equal(t, 404, status)
}

func TestVehicleSearchAvailabilityAndFavorites(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)

	cheap := e.vehicle(owner, 20000)
	pricey := e.vehicle(owner, 90000)
	e.reservation(pricey, renter, models.ReservationConfirmed, day(10), day(12))
	// open requests do not hold dates
	e.reservation(cheap, renter, models.ReservationPending, day(11), day(13))
	e.reservation(pricey, renter, models.ReservationPending, day(20), day(21))

	status, _ := e.do("DELETE", "/vehicles/"+itoa(pricey.ID), ownerToken, nil)
	assert.Equal(t, 409, status, "active bookings keep the listing alive")

	status, body := e.do("GET", "/vehicles?maxPrice=50000", "", nil)
	require.Equal(t, 200, status)
	vehicles := data(body)["vehicles"].([]interface{})
	require.Len(t, vehicles, 1)
	assert.Equal(t, float64(cheap.ID), vehicles[0].(map[string]interface{})["ID"])

	status, body = e.do("GET", "/vehicles?startDate="+dayString(11)+"&endDate="+dayString(13), "", nil)
	require.Equal(t, 200, status)
	vehicles = data(body)["vehicles"].([]interface{})
	require.Len(t, vehicles, 1, "booked listing is filtered out")
	assert.Equal(t, float64(cheap.ID), vehicles[0].(map[string]interface{})["ID"])

	status, _ = e.do("GET", "/vehicles?minPrice=abc", "", nil)
	assert.Equal(t, 422, status)

	status, body = e.do("GET", "/vehicles/"+itoa(pricey.ID)+"/availability?from="+dayString(0)+"&to="+dayString(30), "", nil)
	require.Equal(t, 200, status)
	booked := data(body)["booked"].([]interface{})
	require.Len(t, booked, 1)
	assert.Equal(t, dayString(10), booked[0].(map[string]interface{})["startDate"])
	assert.Equal(t, dayString(12), booked[0].(map[string]interface{})["endDate"])

	for i := 0; i < 2; i++ {
		status, _ = e.do("POST", "/vehicles/"+itoa(cheap.ID)+"/favorite", renterToken, nil)
		require.Equal(t, 200, status, "favoriting is idempotent")
	}
	status, body = e.do("GET", "/vehicles/favorites", renterToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 1)

	status, _ = e.do("DELETE", "/vehicles/"+itoa(cheap.ID)+"/favorite", renterToken, nil)
	require.Equal(t, 200, status)
	status, body = e.do("GET", "/vehicles/favorites", renterToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 0)
}

func TestHugePageNumbersDoNotOverflow(t *testing.T) {
	e := setup(t)
	owner, _ := e.member("owner", models.RoleUser)
	_, renterToken := e.member("renter", models.RoleUser)
	e.vehicle(owner, 20000)

	status, body := e.do("GET", "/vehicles?page=184467440737095518&limit=50", "", nil)
	require.Equal(t, 200, status, body)
	assert.Empty(t, data(body)["vehicles"])

	status, _ = e.do("GET", "/drivers?page=184467440737095518&limit=50", "", nil)
	assert.Equal(t, 422, status)
	status, _ = e.do("GET", "/reservations/mine?page=184467440737095518", renterToken, nil)
	assert.Equal(t, 422, status)
}

func TestVehicleImages(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	_, otherToken := e.member("other", models.RoleUser)
	vehicle := e.vehicle(owner, 20000)
	path := "/vehicles/" + itoa(vehicle.ID) + "/images"

	status, _ := e.upload(path, otherToken, "car.png", pngBytes)
	assert.Equal(t, 403, status)
	status, _ = e.upload("/vehicles/999/images", ownerToken, "car.png", pngBytes)
	assert.Equal(t, 404, status)
	status, _ = e.upload(path, ownerToken, "", nil)
	assert.Equal(t, 400, status, "missing file")
	status, _ = e.upload(path, ownerToken, "car.jpg", []byte("GIF89a not allowed"))
	assert.Equal(t, 400, status)

	status, body := e.upload(path, ownerToken, "car.png", pngBytes)
	require.Equal(t, 201, status, body)
	url := data(body)["url"].(string)
	assert.True(t, strings.HasPrefix(url, fmt.Sprintf("/uploads/vehicles/%d/", vehicle.ID)))
	assert.Equal(t, []interface{}{url}, data(body)["images"])
	_, err := os.Stat(uploadedFile(url))
	require.NoError(t, err)

	status, _ = e.do("DELETE", path, ownerToken, map[string]string{})
	assert.Equal(t, 422, status)
	status, _ = e.do("DELETE", path, ownerToken, map[string]string{"url": "/uploads/vehicles/elsewhere.png"})
	assert.Equal(t, 404, status)
	status, _ = e.do("DELETE", path, otherToken, map[string]string{"url": url})
	assert.Equal(t, 403, status)

	status, body = e.do("DELETE", path, ownerToken, map[string]string{"url": url})
	require.Equal(t, 200, status, body)
	assert.Empty(t, data(body)["images"])
	_, err = os.Stat(uploadedFile(url))
	assert.True(t, os.IsNotExist(err))

	full := datatypes.JSONSlice[string]{}
	for i := 0; i < models.MaxVehicleImages; i++ {
		full = append(full, fmt.Sprintf("/uploads/vehicles/%d/%d.png", vehicle.ID, i))
	}
	require.NoError(t, e.db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("images", full).Error)
	status, _ = e.upload(path, ownerToken, "car.png", pngBytes)
	assert.Equal(t, 409, status, "listing already has the maximum")
}

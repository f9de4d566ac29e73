package routers

import (
	"testing"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationLifecycle(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)
	_, otherToken := e.member("other", models.RoleUser)
	vehicle := e.vehicle(owner, 10000)

	request := map[string]interface{}{
		"vehicleId": vehicle.ID,
		"startDate": dayString(2),
		"endDate":   dayString(4),
		"message":   "Track day at Sebring",
	}

	status, _ := e.do("POST", "/reservations", ownerToken, request)
	assert.Equal(t, 403, status, "owners cannot book their own vehicle")

	status, body := e.do("POST", "/reservations", renterToken, request)
	require.Equal(t, 201, status, body)
	created := data(body)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "unpaid", created["paymentStatus"])
	assert.Equal(t, float64(3), created["days"])
	assert.Equal(t, float64(30000), created["subtotalCents"])
	assert.Equal(t, float64(3000), created["platformFeeCents"])
	assert.Equal(t, float64(33000), created["totalCents"])
	id := uint(created["ID"].(float64))

	// pending requests compete for the same days
	competing := map[string]interface{}{
		"vehicleId": vehicle.ID,
		"startDate": dayString(4),
		"endDate":   dayString(6),
	}
	status, body = e.do("POST", "/reservations", otherToken, competing)
	require.Equal(t, 201, status, body)
	competingID := uint(data(body)["ID"].(float64))

	status, _ = e.do("POST", "/reservations", renterToken, competing)
	assert.Equal(t, 409, status, "one pending request per renter for the same days")

	path := func(action string) string {
		return "/reservations/" + itoa(id) + "/" + action
	}

	status, _ = e.do("PATCH", path("approve"), renterToken, nil)
	assert.Equal(t, 403, status)

	status, body = e.do("PATCH", path("approve"), ownerToken, nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, "confirmed", data(body)["status"])
	assert.Equal(t, "renter", data(body)["renter"].(map[string]interface{})["name"])

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, vehicle.ID).Error)
	assert.Equal(t, 1, v.BookingCount)

	var lost models.Reservation
	require.NoError(t, e.db.First(&lost, competingID).Error)
	assert.Equal(t, models.ReservationDeclined, lost.Status)

	// any shared day with a confirmed booking conflicts
	status, _ = e.do("POST", "/reservations", otherToken, competing)
	assert.Equal(t, 409, status)

	status, _ = e.do("PATCH", path("approve"), ownerToken, nil)
	assert.Equal(t, 409, status, "confirmed cannot be approved again")

	status, _ = e.do("PATCH", path("complete"), ownerToken, nil)
	assert.Equal(t, 409, status, "rental has not started")

	status, body = e.do("PATCH", path("cancel"), renterToken, map[string]string{"reason": "engine trouble"})
	require.Equal(t, 200, status, body)
	assert.Equal(t, "cancelled", data(body)["status"])
	assert.Equal(t, "engine trouble", data(body)["reason"])
	assert.Equal(t, float64(renter.ID), data(body)["cancelledBy"])

	status, _ = e.do("PATCH", path("cancel"), ownerToken, nil)
	assert.Equal(t, 409, status)
}

func TestCreateReservationValidation(t *testing.T) {
	e := setup(t)
	owner, _ := e.member("owner", models.RoleUser)
	_, renterToken := e.member("renter", models.RoleUser)
	vehicle := e.vehicle(owner, 5000)
	require.NoError(t, e.db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("min_rental_days", 2).Error)

	cases := map[string]struct {
		body   map[string]interface{}
		status int
	}{
		"past start":     {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": dayString(-1), "endDate": dayString(2)}, 422},
		"inverted":       {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": dayString(5), "endDate": dayString(3)}, 422},
		"bad date":       {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": "next friday", "endDate": dayString(3)}, 422},
		"below minimum":  {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": dayString(3), "endDate": dayString(3)}, 422},
		"over 60 days":   {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": dayString(1), "endDate": dayString(61)}, 422},
		"unknown":        {map[string]interface{}{"vehicleId": 999, "startDate": dayString(1), "endDate": dayString(2)}, 404},
		"exactly 60 day": {map[string]interface{}{"vehicleId": vehicle.ID, "startDate": dayString(1), "endDate": dayString(60)}, 201},
	}
	for name, tc := range cases {
		status, body := e.do("POST", "/reservations", renterToken, tc.body)
		assert.Equal(t, tc.status, status, "%s: %v", name, body)
	}

	status, _ := e.do("POST", "/reservations", "", cases["exactly 60 day"].body)
	assert.Equal(t, 401, status)
}

func TestApproveDeclinesOverlappingRequests(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	first, _ := e.member("first", models.RoleUser)
	second, _ := e.member("second", models.RoleUser)
	third, _ := e.member("third", models.RoleUser)
	vehicle := e.vehicle(owner, 10000)

	winner := e.reservation(vehicle, first, models.ReservationPending, day(3), day(5))
	clash := e.reservation(vehicle, second, models.ReservationPending, day(5), day(7))
	apart := e.reservation(vehicle, third, models.ReservationPending, day(8), day(9))

	status, body := e.do("PATCH", "/reservations/"+itoa(winner.ID)+"/approve", ownerToken, nil)
	require.Equal(t, 200, status, body)

	var got models.Reservation
	require.NoError(t, e.db.First(&got, clash.ID).Error)
	assert.Equal(t, models.ReservationDeclined, got.Status)
	assert.Equal(t, "dates no longer available", got.Reason)
	assert.NotNil(t, got.DeclinedAt)

	require.NoError(t, e.db.First(&got, apart.ID).Error)
	assert.Equal(t, models.ReservationPending, got.Status)

	// a confirmed booking blocks approving an overlapping request
	late := e.reservation(vehicle, third, models.ReservationPending, day(4), day(4))
	status, _ = e.do("PATCH", "/reservations/"+itoa(late.ID)+"/approve", ownerToken, nil)
	assert.Equal(t, 409, status)
}

func TestDeclineAndComplete(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)
	vehicle := e.vehicle(owner, 10000)

	pending := e.reservation(vehicle, renter, models.ReservationPending, day(2), day(3))
	status, _ := e.do("PATCH", "/reservations/"+itoa(pending.ID)+"/decline", renterToken, nil)
	assert.Equal(t, 403, status)
	status, body := e.do("PATCH", "/reservations/"+itoa(pending.ID)+"/decline", ownerToken, map[string]string{"reason": "in the shop"})
	require.Equal(t, 200, status, body)
	assert.Equal(t, "declined", data(body)["status"])

	started := e.reservation(vehicle, renter, models.ReservationConfirmed, day(0), day(1))
	status, body = e.do("PATCH", "/reservations/"+itoa(started.ID)+"/complete", ownerToken, nil)
	require.Equal(t, 200, status, body)
	assert.Equal(t, "completed", data(body)["status"])

	status, _ = e.do("PATCH", "/reservations/"+itoa(started.ID)+"/cancel", renterToken, nil)
	assert.Equal(t, 409, status, "completed rentals are terminal")
}

func TestReservationVisibility(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)
	_, strangerToken := e.member("stranger", models.RoleUser)
	_, adminToken := e.member("admin", models.RoleAdmin)
	vehicle := e.vehicle(owner, 10000)

	r := e.reservation(vehicle, renter, models.ReservationPending, day(2), day(3))
	e.reservation(vehicle, renter, models.ReservationConfirmed, day(10), day(11))

	for token, want := range map[string]int{renterToken: 200, ownerToken: 200, adminToken: 200, strangerToken: 403} {
		status, _ := e.do("GET", "/reservations/"+itoa(r.ID), token, nil)
		assert.Equal(t, want, status)
	}

	status, body := e.do("GET", "/reservations/mine", renterToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["reservations"], 2)
	assert.Equal(t, float64(2), data(body)["pagination"].(map[string]interface{})["total"])

	status, body = e.do("GET", "/reservations/owner?status=pending", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["reservations"], 1)

	status, body = e.do("GET", "/reservations/mine", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["reservations"], 0)

	status, _ = e.do("GET", "/reservations/mine?status=lost", renterToken, nil)
	assert.Equal(t, 422, status)
}

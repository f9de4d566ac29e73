package routers

import (
	"testing"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewFlow(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)
	second, secondToken := e.member("second", models.RoleUser)
	vehicle := e.vehicle(owner, 10000)

	pending := e.reservation(vehicle, renter, models.ReservationPending, day(5), day(6))
	done := e.reservation(vehicle, renter, models.ReservationCompleted, day(-6), day(-5))
	doneToo := e.reservation(vehicle, second, models.ReservationCompleted, day(-4), day(-3))

	status, _ := e.do("POST", "/reviews", renterToken, map[string]interface{}{"reservationId": pending.ID, "rating": 5})
	assert.Equal(t, 409, status, "only completed rentals")

	status, _ = e.do("POST", "/reviews", ownerToken, map[string]interface{}{"reservationId": done.ID, "rating": 1})
	assert.Equal(t, 403, status, "owners do not review")

	status, _ = e.do("POST", "/reviews", renterToken, map[string]interface{}{"reservationId": done.ID, "rating": 6})
	assert.Equal(t, 422, status)

	status, body := e.do("POST", "/reviews", renterToken, map[string]interface{}{"reservationId": done.ID, "rating": 4, "comment": " Brilliant brakes "})
	require.Equal(t, 201, status, body)
	assert.Equal(t, "Brilliant brakes", data(body)["comment"])
	reviewID := uint(data(body)["ID"].(float64))

	status, _ = e.do("POST", "/reviews", renterToken, map[string]interface{}{"reservationId": done.ID, "rating": 3})
	assert.Equal(t, 409, status, "one review per reservation")

	status, _ = e.do("POST", "/reviews", secondToken, map[string]interface{}{"reservationId": doneToo.ID, "rating": 3})
	require.Equal(t, 201, status)

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, vehicle.ID).Error)
	assert.Equal(t, 3.5, v.AverageRating)
	assert.Equal(t, 2, v.ReviewCount)

	status, _ = e.do("POST", "/reviews/"+itoa(reviewID)+"/reply", renterToken, map[string]string{"reply": "thanks"})
	assert.Equal(t, 403, status)
	status, body = e.do("POST", "/reviews/"+itoa(reviewID)+"/reply", ownerToken, map[string]string{"reply": "Come back soon"})
	require.Equal(t, 200, status, body)
	assert.Equal(t, "Come back soon", data(body)["reply"])
	status, _ = e.do("POST", "/reviews/"+itoa(reviewID)+"/reply", ownerToken, map[string]string{"reply": "again"})
	assert.Equal(t, 409, status)

	status, body = e.do("GET", "/vehicles/"+itoa(vehicle.ID)+"/reviews", "", nil)
	require.Equal(t, 200, status)
	reviews := data(body)["reviews"].([]interface{})
	require.Len(t, reviews, 2)
	newest := reviews[0].(map[string]interface{})
	assert.Equal(t, "second", newest["reviewer"].(map[string]interface{})["name"])
	assert.Equal(t, 3.5, data(body)["averageRating"])

	status, body = e.do("GET", "/user/"+itoa(owner.ID)+"/reviews?limit=1", "", nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["reviews"], 1)
	assert.Equal(t, float64(2), data(body)["pagination"].(map[string]interface{})["totalPages"])
}

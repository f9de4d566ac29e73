package routers

import (
	"testing"

	"paddock/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessaging(t *testing.T) {
	e := setup(t)
	owner, ownerToken := e.member("owner", models.RoleUser)
	renter, renterToken := e.member("renter", models.RoleUser)
	_, strangerToken := e.member("stranger", models.RoleUser)
	vehicle := e.vehicle(owner, 10000)

	status, _ := e.do("POST", "/conversations", renterToken, map[string]interface{}{"recipientId": renter.ID, "message": "hi me"})
	assert.Equal(t, 403, status)
	status, _ = e.do("POST", "/conversations", renterToken, map[string]interface{}{"recipientId": 999, "message": "hello?"})
	assert.Equal(t, 404, status)
	status, _ = e.do("POST", "/conversations", renterToken, map[string]interface{}{"recipientId": owner.ID, "message": "   "})
	assert.Equal(t, 422, status)

	start := map[string]interface{}{"recipientId": owner.ID, "vehicleId": vehicle.ID, "message": "Is the GT3 free next weekend?"}
	status, body := e.do("POST", "/conversations", renterToken, start)
	require.Equal(t, 201, status, body)
	conversation := data(body)["conversation"].(map[string]interface{})
	id := itoa(uint(conversation["ID"].(float64)))
	assert.Equal(t, "Is the GT3 free next weekend?", conversation["lastMessage"])

	start["message"] = "Also, is fuel included?"
	status, body = e.do("POST", "/conversations", renterToken, start)
	require.Equal(t, 200, status, "same pair and vehicle reuse the thread")
	assert.Equal(t, id, itoa(uint(data(body)["conversation"].(map[string]interface{})["ID"].(float64))))

	status, body = e.do("GET", "/conversations/unread", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(2), data(body)["unread"])

	status, body = e.do("GET", "/conversations", ownerToken, nil)
	require.Equal(t, 200, status)
	items := body["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(2), item["unreadCount"])
	assert.Equal(t, "renter", item["participant"].(map[string]interface{})["name"])

	status, _ = e.do("GET", "/conversations/"+id+"/messages", strangerToken, nil)
	assert.Equal(t, 403, status)
	status, _ = e.do("POST", "/conversations/"+id+"/messages", strangerToken, map[string]string{"body": "sneaky"})
	assert.Equal(t, 403, status)

	status, body = e.do("GET", "/conversations/"+id+"/messages", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, data(body)["messages"], 2)

	status, body = e.do("GET", "/conversations/unread", ownerToken, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(0), data(body)["unread"])

	status, body = e.do("POST", "/conversations/"+id+"/messages", ownerToken, map[string]string{"body": "Yes, fuel is included."})
	require.Equal(t, 201, status, body)
	assert.Equal(t, float64(owner.ID), data(body)["senderId"])

	status, body = e.do("GET", "/conversations/unread", renterToken, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(1), data(body)["unread"])
}

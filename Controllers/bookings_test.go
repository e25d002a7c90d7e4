package Controllers

import (
	"net/http"
	"testing"

	"Motorhouse/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingBody() BookingRequest {
	return BookingRequest{
		VRM:         "AB12 CDE",
		Customer:    "Jane Birch",
		Description: "Full service and MOT",
		Date:        "2025-03-10",
	}
}

func TestSaveBookingDefaults(t *testing.T) {
	app, _ := newTestApp(t)

	body := bookingBody()
	body.Date = ""
	status, resp := doJSON(t, app, http.MethodPost, "/api/bookings", body)
	require.Equal(t, http.StatusCreated, status, "%v", resp)

	data := getData(t, resp)
	assert.Equal(t, Models.BookingBooked, data["status"])
	assert.Equal(t, "AB12CDE", data["vrm"])
	assert.NotEmpty(t, data["date"])
}

func TestBookingsSortedByDate(t *testing.T) {
	app, _ := newTestApp(t)

	late := bookingBody()
	late.Date = "2025-06-01"
	early := bookingBody()
	early.Date = "2025-01-15"
	doJSON(t, app, http.MethodPost, "/api/bookings", late)
	doJSON(t, app, http.MethodPost, "/api/bookings", early)

	status, resp := doJSON(t, app, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, status)
	list, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-01-15", list[0].(map[string]interface{})["date"])
	assert.Equal(t, "2025-06-01", list[1].(map[string]interface{})["date"])
}

func TestUpdateBookingStatusLifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	_, resp := doJSON(t, app, http.MethodPost, "/api/bookings", bookingBody())
	id := getData(t, resp)["id"].(string)

	status, resp := doJSON(t, app, http.MethodPatch, "/api/bookings/"+id+"/status", map[string]string{"status": Models.BookingInProgress})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, Models.BookingInProgress, getData(t, resp)["status"])

	status, _ = doJSON(t, app, http.MethodPatch, "/api/bookings/"+id+"/status", map[string]string{"status": "Cancelled"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInvoiceDraftFromBooking(t *testing.T) {
	app, _ := newTestApp(t)

	// a matching stock vehicle enriches the draft
	vehicle := vehicleBody()
	doJSON(t, app, http.MethodPost, "/api/fleet", vehicle)

	_, resp := doJSON(t, app, http.MethodPost, "/api/bookings", bookingBody())
	id := getData(t, resp)["id"].(string)

	status, resp := doJSON(t, app, http.MethodGet, "/api/bookings/"+id+"/invoice-draft", nil)
	require.Equal(t, http.StatusOK, status)

	data := getData(t, resp)
	assert.Equal(t, "Jane Birch", data["customer"])
	assert.Equal(t, "AB12CDE", data["vrm"])
	assert.Equal(t, "Ford", data["make"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Full service and MOT", item["desc"])
	assert.Equal(t, float64(1), item["qty"])
	assert.Equal(t, float64(0), item["price"])
}

func TestVHCDraftFromBooking(t *testing.T) {
	app, _ := newTestApp(t)

	doJSON(t, app, http.MethodPost, "/api/fleet", vehicleBody())
	_, resp := doJSON(t, app, http.MethodPost, "/api/bookings", bookingBody())
	id := getData(t, resp)["id"].(string)

	status, resp := doJSON(t, app, http.MethodGet, "/api/bookings/"+id+"/vhc-draft", nil)
	require.Equal(t, http.StatusOK, status)

	data := getData(t, resp)
	assert.Equal(t, id, data["bookingId"])
	assert.Equal(t, "Ford Fiesta", data["vehicle"])
	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, len(Models.VHCItems))

	// drafts are never persisted
	status, resp = doJSON(t, app, http.MethodGet, "/api/vhc", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), resp["count"])
}

package Controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCustomerRejectsCaseInsensitiveDuplicate(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{Name: "John Smith"})
	require.Equal(t, http.StatusCreated, status)

	status, resp := doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{Name: "JOHN SMITH"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, resp["message"], "already exists")
}

func TestSaveCustomerAllowsEditingOwnRecord(t *testing.T) {
	app, _ := newTestApp(t)

	_, resp := doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{Name: "Editable"})
	id := getData(t, resp)["id"].(string)

	status, resp := doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{
		ID:    id,
		Name:  "Editable",
		Phone: "01234 567890",
	})
	require.Equal(t, http.StatusCreated, status)
	data := getData(t, resp)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "01234 567890", data["phone"])
}

func TestGetCustomersFilter(t *testing.T) {
	app, _ := newTestApp(t)

	doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{Name: "Alpha"})
	doJSON(t, app, http.MethodPost, "/api/customers", CustomerRequest{Name: "Beta"})

	status, resp := doJSON(t, app, http.MethodGet, "/api/customers?q=alp", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp["count"])
}

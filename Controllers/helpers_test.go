package Controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestCoordinator(t *testing.T) *Sync.Coordinator {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Models.StoredSnapshot{}, &Models.CounterEntry{}))
	return Sync.NewCoordinator(Models.NewLocalStore(db), nil)
}

// newTestApp wires every handler onto a bare app, skipping auth.
func newTestApp(t *testing.T) (*fiber.App, *Sync.Coordinator) {
	t.Helper()
	coord := newTestCoordinator(t)
	app := fiber.New()

	ic := NewInvoiceController(coord)
	fc := NewFleetController(coord)
	bc := NewBookingController(coord)
	cc := NewCustomerController(coord)
	vc := NewVHCController(coord)
	sc := NewStatusController(coord)

	app.Get("/api/invoices", ic.GetInvoices)
	app.Post("/api/invoices", ic.SaveInvoice)
	app.Get("/api/invoices/:id", ic.GetInvoice)
	app.Get("/api/invoices/:id/document", ic.GetInvoiceDocument)
	app.Patch("/api/invoices/:id/payment", ic.UpdatePaymentStatus)
	app.Delete("/api/invoices/:id", ic.DeleteInvoice)

	app.Get("/api/fleet", fc.GetFleet)
	app.Post("/api/fleet", fc.SaveVehicle)
	app.Post("/api/fleet/:id/loan", fc.LoanVehicle)
	app.Post("/api/fleet/:id/return", fc.ReturnVehicle)
	app.Get("/api/fleet/:id/invoice-draft", fc.SellVehicle)
	app.Delete("/api/fleet/:id", fc.DeleteVehicle)

	app.Get("/api/bookings", bc.GetBookings)
	app.Post("/api/bookings", bc.SaveBooking)
	app.Patch("/api/bookings/:id/status", bc.UpdateBookingStatus)
	app.Get("/api/bookings/:id/invoice-draft", bc.InvoiceFromBooking)
	app.Get("/api/bookings/:id/vhc-draft", bc.VHCFromBooking)
	app.Delete("/api/bookings/:id", bc.DeleteBooking)

	app.Get("/api/customers", cc.GetCustomers)
	app.Post("/api/customers", cc.SaveCustomer)
	app.Delete("/api/customers/:id", cc.DeleteCustomer)

	app.Get("/api/vhc", vc.GetReports)
	app.Get("/api/vhc/new", vc.NewReport)
	app.Post("/api/vhc", vc.SaveReport)
	app.Get("/api/vhc/:id", vc.GetReport)
	app.Delete("/api/vhc/:id", vc.DeleteReport)

	app.Get("/api/stats/dashboard", sc.GetDashboard)

	return app, coord
}

// doJSON sends a request with a JSON body and decodes the JSON reply.
func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func getData(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", payload)
	return data
}

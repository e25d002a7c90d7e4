package Controllers

import (
	"sort"
	"time"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BookingController handles workshop bookings
type BookingController struct {
	Sync *Sync.Coordinator
}

// NewBookingController creates a new BookingController
func NewBookingController(c *Sync.Coordinator) *BookingController {
	return &BookingController{Sync: c}
}

type BookingRequest struct {
	ID          string `json:"id"`
	VRM         string `json:"vrm" validate:"required"`
	Customer    string `json:"customer" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// GetBookings retrieves all bookings in chronological order
// GET /api/bookings
func (bc *BookingController) GetBookings(c *fiber.Ctx) error {
	var out []*Models.Booking
	bc.Sync.View(func(snap *Models.Snapshot) {
		out = append(out, snap.Bookings...)
	})

	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].Date
		if di == "" {
			di = out[i].CreatedAt
		}
		dj := out[j].Date
		if dj == "" {
			dj = out[j].CreatedAt
		}
		return di < dj
	})

	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

// SaveBooking books a vehicle in, or edits an existing booking. New
// bookings start as Booked and default to today.
// POST /api/bookings
func (bc *BookingController) SaveBooking(c *fiber.Ctx) error {
	var req BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessage(err),
		})
	}

	existing := bc.findBooking(req.ID)

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	booking := &Models.Booking{
		VRM:         Models.NormalizeVRM(req.VRM),
		Customer:    req.Customer,
		Description: req.Description,
		Date:        date,
		Status:      Models.BookingBooked,
	}
	if existing != nil {
		booking.ID = existing.ID
		booking.CreatedAt = existing.CreatedAt
		booking.Status = existing.Status
		if booking.Description == "" {
			booking.Description = existing.Description
		}
	}

	warn, err := bc.Sync.Save(c.Context(), Models.CollBookings, booking)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save booking",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Booking saved successfully", "data": booking}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateBookingStatus moves a booking through its lifecycle
// PATCH /api/bookings/:id/status
func (bc *BookingController) UpdateBookingStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status" validate:"required,oneof=Booked 'In Progress' Completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessage(err),
		})
	}

	booking := bc.findBooking(c.Params("id"))
	if booking == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Booking not found",
			"message": "The specified booking does not exist",
		})
	}

	updated := *booking
	updated.Status = req.Status

	warn, err := bc.Sync.Save(c.Context(), Models.CollBookings, &updated)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save booking",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Booking status updated", "data": &updated}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.JSON(resp)
}

// InvoiceFromBooking returns a draft invoice prefilled from a booking,
// enriched with vehicle details from stock by VRM. The booking itself
// is untouched.
// GET /api/bookings/:id/invoice-draft
func (bc *BookingController) InvoiceFromBooking(c *fiber.Ctx) error {
	booking := bc.findBooking(c.Params("id"))
	if booking == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Booking not found",
			"message": "The specified booking does not exist",
		})
	}

	var stock *Models.FleetVehicle
	bc.Sync.View(func(snap *Models.Snapshot) {
		stock = snap.FindFleetByVRM(booking.VRM)
	})

	draft := InvoiceRequest{
		Customer: booking.Customer,
		VRM:      booking.VRM,
		Type:     Models.TypeInvoice,
		Date:     time.Now().Format("2006-01-02"),
		Items: []LineItemRequest{
			{ID: time.Now().UnixMilli(), Desc: booking.Description, Qty: 1, Price: 0},
		},
	}
	if stock != nil {
		draft.Make = stock.Make
		draft.Model = stock.Model
		draft.Mileage = stock.Mileage
	}
	return c.JSON(fiber.Map{"data": draft})
}

// VHCFromBooking returns a fresh health check report seeded with the
// full catalog and the booking's vehicle details. Nothing is persisted
// until the report is saved.
// GET /api/bookings/:id/vhc-draft
func (bc *BookingController) VHCFromBooking(c *fiber.Ctx) error {
	booking := bc.findBooking(c.Params("id"))
	if booking == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Booking not found",
			"message": "The specified booking does not exist",
		})
	}

	var stock *Models.FleetVehicle
	bc.Sync.View(func(snap *Models.Snapshot) {
		stock = snap.FindFleetByVRM(booking.VRM)
	})

	vehicle := ""
	if stock != nil {
		vehicle = joinNonEmpty(stock.Make, stock.Model)
	}

	report := &Models.VHCReport{
		BookingID: booking.ID,
		VRM:       booking.VRM,
		Customer:  booking.Customer,
		Vehicle:   vehicle,
		Items:     Models.NewVHCItems(),
	}
	report.ID = uuid.NewString()
	return c.JSON(fiber.Map{"data": report})
}

// DeleteBooking removes a booking
// DELETE /api/bookings/:id?confirm=true
func (bc *BookingController) DeleteBooking(c *fiber.Ctx) error {
	return deleteRecord(bc.Sync, c, Models.CollBookings)
}

func (bc *BookingController) findBooking(id string) *Models.Booking {
	if id == "" {
		return nil
	}
	var found *Models.Booking
	bc.Sync.View(func(snap *Models.Snapshot) {
		for _, b := range snap.Bookings {
			if b.ID == id {
				found = b
				break
			}
		}
	})
	return found
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

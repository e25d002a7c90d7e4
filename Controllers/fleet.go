package Controllers

import (
	"strings"
	"time"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
)

// FleetController handles the vehicle stock and courtesy car loans
type FleetController struct {
	Sync *Sync.Coordinator
}

// NewFleetController creates a new FleetController
func NewFleetController(c *Sync.Coordinator) *FleetController {
	return &FleetController{Sync: c}
}

type VehicleRequest struct {
	ID      string `json:"id"`
	Make    string `json:"make" validate:"required"`
	Model   string `json:"model"`
	VRM     string `json:"vrm" validate:"required"`
	Mileage string `json:"mileage"`
	Price   string `json:"price"`
}

type LoanRequest struct {
	Customer string `json:"customer" validate:"required"`
	DateOut  string `json:"dateOut"`
	TimeOut  string `json:"timeOut"`
}

// GetFleet retrieves the vehicle stock with an optional make/model/VRM
// search
// GET /api/fleet?q=
func (fc *FleetController) GetFleet(c *fiber.Ctx) error {
	q := strings.ToLower(c.Query("q"))
	vrmQuery := Models.NormalizeVRM(c.Query("q"))

	var out []*Models.FleetVehicle
	fc.Sync.View(func(snap *Models.Snapshot) {
		for _, v := range snap.Fleet {
			if q != "" &&
				!strings.Contains(strings.ToLower(v.Make+" "+v.Model), q) &&
				!(vrmQuery != "" && strings.Contains(v.VRM, vrmQuery)) {
				continue
			}
			out = append(out, v)
		}
	})

	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

// SaveVehicle creates or updates a fleet vehicle. A vehicle saved
// without a status defaults to Available; loan state is never changed
// by a plain edit.
// POST /api/fleet
func (fc *FleetController) SaveVehicle(c *fiber.Ctx) error {
	var req VehicleRequest
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

	existing := fc.findVehicle(req.ID)

	vehicle := &Models.FleetVehicle{
		Make:    req.Make,
		Model:   req.Model,
		VRM:     Models.NormalizeVRM(req.VRM),
		Mileage: req.Mileage,
		Price:   req.Price,
		Status:  Models.FleetAvailable,
	}
	if existing != nil {
		vehicle.ID = existing.ID
		vehicle.CreatedAt = existing.CreatedAt
		vehicle.Status = existing.Status
		vehicle.LoanDetails = existing.LoanDetails
	}
	vehicle.Normalize()

	warn, err := fc.Sync.Save(c.Context(), Models.CollFleet, vehicle)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save vehicle",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Vehicle saved successfully", "data": vehicle}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// LoanVehicle puts a vehicle out on courtesy loan
// POST /api/fleet/:id/loan
func (fc *FleetController) LoanVehicle(c *fiber.Ctx) error {
	var req LoanRequest
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

	vehicle := fc.findVehicle(c.Params("id"))
	if vehicle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Vehicle not found",
			"message": "The specified vehicle does not exist",
		})
	}

	now := time.Now()
	dateOut := req.DateOut
	if dateOut == "" {
		dateOut = now.Format("2006-01-02")
	}
	timeOut := req.TimeOut
	if timeOut == "" {
		timeOut = now.Format("15:04")
	}

	updated := *vehicle
	updated.Status = Models.FleetOnLoan
	updated.LoanDetails = &Models.LoanDetails{
		Customer: req.Customer,
		DateOut:  dateOut,
		TimeOut:  timeOut,
	}

	warn, err := fc.Sync.Save(c.Context(), Models.CollFleet, &updated)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save vehicle",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Vehicle loaned out", "data": &updated}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.JSON(resp)
}

// ReturnVehicle ends a courtesy loan
// POST /api/fleet/:id/return?confirm=true
func (fc *FleetController) ReturnVehicle(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Confirmation required",
			"message": "Pass confirm=true to confirm the vehicle return.",
		})
	}

	vehicle := fc.findVehicle(c.Params("id"))
	if vehicle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Vehicle not found",
			"message": "The specified vehicle does not exist",
		})
	}

	updated := *vehicle
	updated.Status = Models.FleetAvailable
	updated.LoanDetails = nil

	warn, err := fc.Sync.Save(c.Context(), Models.CollFleet, &updated)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save vehicle",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Vehicle returned", "data": &updated}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.JSON(resp)
}

// SellVehicle returns a draft invoice prefilled from a stock vehicle.
// Nothing is persisted until the draft is saved.
// GET /api/fleet/:id/invoice-draft
func (fc *FleetController) SellVehicle(c *fiber.Ctx) error {
	vehicle := fc.findVehicle(c.Params("id"))
	if vehicle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Vehicle not found",
			"message": "The specified vehicle does not exist",
		})
	}

	draft := InvoiceRequest{
		VRM:     vehicle.VRM,
		Make:    vehicle.Make,
		Model:   vehicle.Model,
		Mileage: vehicle.Mileage,
		Type:    Models.TypeInvoice,
		Date:    time.Now().Format("2006-01-02"),
	}
	return c.JSON(fiber.Map{"data": draft})
}

// DeleteVehicle removes a vehicle from stock
// DELETE /api/fleet/:id?confirm=true
func (fc *FleetController) DeleteVehicle(c *fiber.Ctx) error {
	return deleteRecord(fc.Sync, c, Models.CollFleet)
}

func (fc *FleetController) findVehicle(id string) *Models.FleetVehicle {
	if id == "" {
		return nil
	}
	var found *Models.FleetVehicle
	fc.Sync.View(func(snap *Models.Snapshot) {
		for _, v := range snap.Fleet {
			if v.ID == id {
				found = v
				break
			}
		}
	})
	return found
}

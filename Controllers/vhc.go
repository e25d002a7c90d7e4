package Controllers

import (
	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// VHCController handles vehicle health check reports
type VHCController struct {
	Sync *Sync.Coordinator
}

// NewVHCController creates a new VHCController
func NewVHCController(c *Sync.Coordinator) *VHCController {
	return &VHCController{Sync: c}
}

type VHCRequest struct {
	ID        string           `json:"id"`
	BookingID string           `json:"bookingId"`
	VRM       string           `json:"vrm" validate:"required"`
	Customer  string           `json:"customer"`
	Vehicle   string           `json:"vehicle"`
	Items     []Models.VHCItem `json:"items" validate:"dive"`
	Summary   string           `json:"summary"`
}

// GetReports retrieves all health check reports
// GET /api/vhc
func (vc *VHCController) GetReports(c *fiber.Ctx) error {
	var out []*Models.VHCReport
	vc.Sync.View(func(snap *Models.Snapshot) {
		out = append(out, snap.VHC...)
	})
	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

// GetReport retrieves a single report by ID
// GET /api/vhc/:id
func (vc *VHCController) GetReport(c *fiber.Ctx) error {
	report := vc.findReport(c.Params("id"))
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Report not found",
			"message": "The specified report does not exist",
		})
	}
	return c.JSON(fiber.Map{"data": report})
}

// NewReport returns a fresh report seeded with all fifteen catalog
// items in unset state. Nothing is persisted.
// GET /api/vhc/new
func (vc *VHCController) NewReport(c *fiber.Ctx) error {
	report := &Models.VHCReport{
		Items: Models.NewVHCItems(),
	}
	report.ID = uuid.NewString()
	return c.JSON(fiber.Map{"data": report})
}

// SaveReport creates or updates a health check report. Item statuses
// outside green/amber/red/unset are rejected, and the item list is
// reseeded from the catalog when missing.
// POST /api/vhc
func (vc *VHCController) SaveReport(c *fiber.Ctx) error {
	var req VHCRequest
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
	for _, item := range req.Items {
		switch item.Status {
		case "", "green", "amber", "red":
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Validation failed",
				"message": "Item status must be green, amber, red or empty",
			})
		}
	}

	existing := vc.findReport(req.ID)

	report := &Models.VHCReport{
		BookingID: req.BookingID,
		VRM:       Models.NormalizeVRM(req.VRM),
		Customer:  req.Customer,
		Vehicle:   req.Vehicle,
		Items:     req.Items,
		Summary:   req.Summary,
	}
	report.ID = req.ID
	if existing != nil {
		report.CreatedAt = existing.CreatedAt
	}
	report.Normalize()

	warn, err := vc.Sync.Save(c.Context(), Models.CollVHC, report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save report",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Report saved successfully", "data": report}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteReport removes a health check report
// DELETE /api/vhc/:id?confirm=true
func (vc *VHCController) DeleteReport(c *fiber.Ctx) error {
	return deleteRecord(vc.Sync, c, Models.CollVHC)
}

func (vc *VHCController) findReport(id string) *Models.VHCReport {
	if id == "" {
		return nil
	}
	var found *Models.VHCReport
	vc.Sync.View(func(snap *Models.Snapshot) {
		for _, r := range snap.VHC {
			if r.ID == id {
				found = r
				break
			}
		}
	})
	return found
}

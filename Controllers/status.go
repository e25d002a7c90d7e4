package Controllers

import (
	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
)

// StatusController exposes connectivity state and dashboard stats
type StatusController struct {
	Sync *Sync.Coordinator
}

// NewStatusController creates a new StatusController
func NewStatusController(c *Sync.Coordinator) *StatusController {
	return &StatusController{Sync: c}
}

// GetStatus reports the connectivity state
// GET /api/status
func (sc *StatusController) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"state": sc.Sync.State()})
}

// ToggleOffline flips the connectivity state: online instances detach
// their subscriptions and fall back to local data; offline instances
// try to re-establish the subscription set.
// POST /api/status/toggle
func (sc *StatusController) ToggleOffline(c *fiber.Ctx) error {
	if sc.Sync.Online() {
		sc.Sync.GoOffline()
		return c.JSON(fiber.Map{"state": sc.Sync.State()})
	}

	if err := sc.Sync.StartSync(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "Could not go online",
			"message": err.Error(),
			"state":   sc.Sync.State(),
		})
	}
	return c.JSON(fiber.Map{"state": sc.Sync.State()})
}

// GetDashboard returns the summary card numbers: revenue across
// non-quote documents, job and booking counts, and vehicles on loan
// GET /api/stats/dashboard
func (sc *StatusController) GetDashboard(c *fiber.Ctx) error {
	var revenue float64
	var jobs, bookings, onLoan int

	sc.Sync.View(func(snap *Models.Snapshot) {
		for _, inv := range snap.Invoices {
			if inv.Type != Models.TypeQuote {
				revenue += inv.Total
			}
		}
		jobs = len(snap.Invoices)
		bookings = len(snap.Bookings)
		for _, v := range snap.Fleet {
			if v.Status == Models.FleetOnLoan {
				onLoan++
			}
		}
	})

	return c.JSON(fiber.Map{
		"revenue":  revenue,
		"jobs":     jobs,
		"bookings": bookings,
		"onLoan":   onLoan,
	})
}

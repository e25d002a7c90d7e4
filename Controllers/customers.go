package Controllers

import (
	"strings"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
)

// CustomerController handles the customer book
type CustomerController struct {
	Sync *Sync.Coordinator
}

// NewCustomerController creates a new CustomerController
func NewCustomerController(c *Sync.Coordinator) *CustomerController {
	return &CustomerController{Sync: c}
}

type CustomerRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// GetCustomers retrieves all customers with an optional name filter
// GET /api/customers?q=
func (cc *CustomerController) GetCustomers(c *fiber.Ctx) error {
	q := strings.ToLower(c.Query("q"))

	var out []*Models.Customer
	cc.Sync.View(func(snap *Models.Snapshot) {
		for _, cust := range snap.Customers {
			if q != "" && !strings.Contains(strings.ToLower(cust.Name), q) {
				continue
			}
			out = append(out, cust)
		}
	})

	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

// SaveCustomer creates or updates a customer record. The name is the
// natural key; saving a name that already belongs to another record
// (case-insensitive) is rejected rather than silently duplicated.
// POST /api/customers
func (cc *CustomerController) SaveCustomer(c *fiber.Ctx) error {
	var req CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessage(err),
		})
	}

	var existing *Models.Customer
	var clash *Models.Customer
	cc.Sync.View(func(snap *Models.Snapshot) {
		for _, cust := range snap.Customers {
			if req.ID != "" && cust.ID == req.ID {
				existing = cust
			}
		}
		if named := snap.FindCustomerByName(req.Name); named != nil && named.ID != req.ID {
			clash = named
		}
	})
	if clash != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Duplicate customer",
			"message": "A customer with this name already exists",
		})
	}

	cust := &Models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if existing != nil {
		cust.ID = existing.ID
		cust.CreatedAt = existing.CreatedAt
	}

	warn, err := cc.Sync.Save(c.Context(), Models.CollCustomers, cust)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save customer",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Customer saved successfully", "data": cust}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteCustomer removes a customer record
// DELETE /api/customers/:id?confirm=true
func (cc *CustomerController) DeleteCustomer(c *fiber.Ctx) error {
	return deleteRecord(cc.Sync, c, Models.CollCustomers)
}

package Controllers

import (
	"strconv"
	"strings"
	"time"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
)

// InvoiceController handles invoice and quote endpoints
type InvoiceController struct {
	Sync *Sync.Coordinator
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(c *Sync.Coordinator) *InvoiceController {
	return &InvoiceController{Sync: c}
}

type LineItemRequest struct {
	ID    int64   `json:"id"`
	Desc  string  `json:"desc"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type InvoiceRequest struct {
	ID              string            `json:"id"`
	Customer        string            `json:"customer" validate:"required"`
	Date            string            `json:"date" validate:"required"`
	VRM             string            `json:"vrm"`
	Make            string            `json:"make"`
	Model           string            `json:"model"`
	Type            string            `json:"type" validate:"required,oneof=Invoice Quote"`
	Items           []LineItemRequest `json:"items"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	CustomerAddress string            `json:"customerAddress"`
	Mileage         string            `json:"mileage"`
}

// GetInvoices retrieves invoices, newest first, with an optional text
// filter and result limit
// GET /api/invoices?q=&limit=50
func (ic *InvoiceController) GetInvoices(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 {
		limit = 50
	}
	q := strings.ToLower(c.Query("q"))

	var out []*Models.Invoice
	ic.Sync.View(func(snap *Models.Snapshot) {
		for _, inv := range snap.Invoices {
			if q != "" &&
				!strings.Contains(strings.ToLower(inv.Customer), q) &&
				!strings.Contains(strings.ToLower(inv.VRM), q) &&
				!strings.Contains(strings.ToLower(inv.DisplayID), q) {
				continue
			}
			out = append(out, inv)
			if len(out) == limit {
				break
			}
		}
	})

	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

// GetInvoice retrieves a single invoice by ID
// GET /api/invoices/:id
func (ic *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	var inv *Models.Invoice
	ic.Sync.View(func(snap *Models.Snapshot) {
		for _, i := range snap.Invoices {
			if i.ID == c.Params("id") {
				inv = i
				break
			}
		}
	})
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Invoice not found",
			"message": "The specified invoice does not exist",
		})
	}
	return c.JSON(fiber.Map{"data": inv})
}

// GetInvoiceDocument returns the data an external print layout needs:
// the invoice, the letterhead, terms and the net/VAT breakdown
// GET /api/invoices/:id/document
func (ic *InvoiceController) GetInvoiceDocument(c *fiber.Ctx) error {
	var inv *Models.Invoice
	ic.Sync.View(func(snap *Models.Snapshot) {
		for _, i := range snap.Invoices {
			if i.ID == c.Params("id") {
				inv = i
				break
			}
		}
	})
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Invoice not found",
			"message": "The specified invoice does not exist",
		})
	}

	net, vat := Models.NetVAT(inv.Total)
	return c.JSON(fiber.Map{
		"data":    inv,
		"company": Models.Company,
		"terms":   Models.TermsText,
		"net":     net,
		"vat":     vat,
	})
}

// SaveInvoice creates or updates an invoice or quote. A new customer
// record is auto-created when the customer name is not yet known
// (case-insensitive). The display identifier is assigned once and
// never changes on edit.
// POST /api/invoices
func (ic *InvoiceController) SaveInvoice(c *fiber.Ctx) error {
	var req InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
	}

	req.Customer = strings.TrimSpace(req.Customer)
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": validationMessage(err),
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid date format",
			"message": "Date must be in YYYY-MM-DD format",
		})
	}

	items := validLineItems(req.Items)
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"message": "Please add at least one line item with a description and quantity greater than 0",
		})
	}

	var existing *Models.Invoice
	if req.ID != "" {
		ic.Sync.View(func(snap *Models.Snapshot) {
			for _, i := range snap.Invoices {
				if i.ID == req.ID {
					existing = i
					break
				}
			}
		})
	}

	paymentStatus := Models.PaymentUnpaid
	createdAt := ""
	if existing != nil {
		paymentStatus = existing.PaymentStatus
		createdAt = existing.CreatedAt
	}

	displayID := ""
	if existing != nil && existing.DisplayID != "" {
		displayID = existing.DisplayID
	} else {
		displayID, err = ic.Sync.NextInvoiceNumber(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to assign invoice number",
				"message": err.Error(),
			})
		}
	}

	status := Models.StatusPending
	if req.Type == Models.TypeQuote {
		status = Models.StatusDraft
	}

	vrm := Models.NormalizeVRM(req.VRM)
	inv := &Models.Invoice{
		VRM:           vrm,
		Make:          req.Make,
		Model:         req.Model,
		Customer:      req.Customer,
		Date:          date.Format("02/01/2006"),
		Type:          req.Type,
		Status:        status,
		PaymentStatus: paymentStatus,
		Items:         items,
		Total:         Models.GrossTotal(items),
		DisplayID:     displayID,
		Details: Models.InvoiceDetails{
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			Mileage:         req.Mileage,
			VRM:             vrm,
		},
	}
	inv.ID = req.ID
	inv.CreatedAt = createdAt

	var warnings []string

	// Auto-create the customer record on first sight of the name.
	var known *Models.Customer
	ic.Sync.View(func(snap *Models.Snapshot) {
		known = snap.FindCustomerByName(req.Customer)
	})
	if known == nil {
		cust := &Models.Customer{
			Name:    req.Customer,
			Email:   req.CustomerEmail,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		}
		if warn, err := ic.Sync.Save(c.Context(), Models.CollCustomers, cust); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to save customer",
				"message": err.Error(),
			})
		} else if warn != "" {
			warnings = append(warnings, warn)
		}
	}

	warn, err := ic.Sync.Save(c.Context(), Models.CollInvoices, inv)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save invoice",
			"message": err.Error(),
		})
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	resp := fiber.Map{
		"message": "Invoice saved successfully",
		"data":    inv,
	}
	if len(warnings) > 0 {
		resp["warning"] = strings.Join(warnings, "; ")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdatePaymentStatus flips an invoice between Unpaid, Paid and
// Overdue
// PATCH /api/invoices/:id/payment
func (ic *InvoiceController) UpdatePaymentStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status" validate:"required,oneof=Unpaid Paid Overdue"`
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

	var inv *Models.Invoice
	ic.Sync.View(func(snap *Models.Snapshot) {
		for _, i := range snap.Invoices {
			if i.ID == c.Params("id") {
				copied := *i
				inv = &copied
				break
			}
		}
	})
	if inv == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Invoice not found",
			"message": "The specified invoice does not exist",
		})
	}

	inv.PaymentStatus = req.Status
	warn, err := ic.Sync.Save(c.Context(), Models.CollInvoices, inv)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to update invoice",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Payment status updated", "data": inv}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.JSON(resp)
}

// DeleteInvoice removes an invoice. The confirm flag stands in for
// the deletion confirmation dialog; there is no undo.
// DELETE /api/invoices/:id?confirm=true
func (ic *InvoiceController) DeleteInvoice(c *fiber.Ctx) error {
	return deleteRecord(ic.Sync, c, Models.CollInvoices)
}

// validLineItems trims, clamps and filters the requested rows the way
// the invoice editor does: negative quantities and prices collapse to
// zero, and only rows with a description and a positive quantity
// survive.
func validLineItems(reqs []LineItemRequest) []Models.LineItem {
	var items []Models.LineItem
	for _, r := range reqs {
		desc := strings.TrimSpace(r.Desc)
		qty := r.Qty
		if qty < 0 {
			qty = 0
		}
		price := r.Price
		if price < 0 {
			price = 0
		}
		if desc == "" || qty == 0 {
			continue
		}
		items = append(items, Models.LineItem{
			ID:    r.ID,
			Desc:  desc,
			Qty:   qty,
			Price: price,
		})
	}
	return items
}

// deleteRecord is the shared delete path: confirmation required,
// local removal always wins, remote delete only when online.
func deleteRecord(coord *Sync.Coordinator, c *fiber.Ctx, coll string) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Confirmation required",
			"message": "Pass confirm=true to delete. This cannot be undone.",
		})
	}

	warn, err := coord.Delete(c.Context(), coll, c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Record not found",
			"message": err.Error(),
		})
	}

	resp := fiber.Map{"message": "Deleted successfully"}
	if warn != "" {
		resp["warning"] = warn
	}
	return c.JSON(resp)
}

package Controllers

import (
	"fmt"
	"strings"

	"Motorhouse/Models"
	"Motorhouse/email"

	"github.com/gofiber/fiber/v2"
)

type EmailInvoiceRequest struct {
	To string `json:"to" validate:"required,email"`
}

// EmailInvoice sends an invoice summary to the customer
// POST /api/invoices/:id/email
func (ic *InvoiceController) EmailInvoice(c *fiber.Ctx) error {
	var req EmailInvoiceRequest
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

	message := Models.EmailMessage{
		To:      []string{req.To},
		Subject: fmt.Sprintf("%s %s from %s", inv.Type, inv.DisplayID, Models.Company.Name),
		Body:    buildInvoiceEmailBody(inv),
	}
	if err := email.SendEmail(Models.EmailConfigFromEnv(), message); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to send email",
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Email sent"})
}

func buildInvoiceEmailBody(inv *Models.Invoice) string {
	net, vat := Models.NetVAT(inv.Total)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", strings.ToUpper(inv.Type), inv.DisplayID)
	fmt.Fprintf(&b, "Date: %s\n", inv.Date)
	fmt.Fprintf(&b, "Customer: %s\n", inv.Customer)
	if inv.VRM != "" {
		fmt.Fprintf(&b, "Vehicle: %s %s %s\n", inv.VRM, inv.Make, inv.Model)
	}
	b.WriteString("\n")
	for _, item := range inv.Items {
		fmt.Fprintf(&b, "%d x %s @ £%.2f = £%.2f\n", item.Qty, item.Desc, item.Price, float64(item.Qty)*item.Price)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Net: £%.2f\nVAT: £%.2f\nTotal: £%.2f\n\n", net, vat, inv.Total)
	fmt.Fprintf(&b, "%s\n\n%s\n%s\n", Models.TermsText, Models.Company.Name, Models.Company.Address)
	return b.String()
}

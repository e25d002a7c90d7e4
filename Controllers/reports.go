package Controllers

import (
	"fmt"
	"time"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ReportController exports the invoice book as a spreadsheet
type ReportController struct {
	Sync *Sync.Coordinator
}

// NewReportController creates a new ReportController
func NewReportController(c *Sync.Coordinator) *ReportController {
	return &ReportController{Sync: c}
}

// ExportInvoiceBook downloads every invoice and quote as an Excel
// workbook with a net/VAT breakdown per document
// GET /api/reports/invoices
func (rc *ReportController) ExportInvoiceBook(c *fiber.Ctx) error {
	var invoices []*Models.Invoice
	rc.Sync.View(func(snap *Models.Snapshot) {
		invoices = append(invoices, snap.Invoices...)
	})

	f := excelize.NewFile()

	sheetName := "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to build report",
			"message": err.Error(),
		})
	}
	f.SetActiveSheet(index)

	headers := []string{
		"No.", "Date", "Type", "Customer", "VRM", "Make", "Model",
		"Status", "Payment", "Net", "VAT", "Total",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, inv := range invoices {
		row := rowIndex + 2

		net, vat := Models.NetVAT(inv.Total)
		values := []interface{}{
			inv.DisplayID,
			inv.Date,
			inv.Type,
			inv.Customer,
			inv.VRM,
			inv.Make,
			inv.Model,
			inv.Status,
			inv.PaymentStatus,
			net,
			vat,
			inv.Total,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 0; i < len(headers); i++ {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if defaultSheet := f.GetSheetName(0); defaultSheet != sheetName {
		f.DeleteSheet(defaultSheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to build report",
			"message": err.Error(),
		})
	}

	filename := "motorhouse_invoices_" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

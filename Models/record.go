package Models

import (
	"math"
	"strings"
)

// SchemaVersion is stamped on every saved document. Increment when the
// document structure changes so legacy data can be migrated.
const SchemaVersion = 1

// VAT is charged at a fixed 20% on all invoice lines.
const VATRate = 0.20

// Collection names. These are also the Firestore collection ids.
const (
	CollInvoices  = "invoices"
	CollFleet     = "fleet"
	CollBookings  = "bookings"
	CollCustomers = "customers"
	CollVHC       = "vhc"
)

// Collections lists every synced collection.
var Collections = []string{CollInvoices, CollFleet, CollBookings, CollCustomers, CollVHC}

// VHCItems is the fixed inspection catalog. Every new report is seeded
// with all fifteen items in unset state.
var VHCItems = []string{
	"NSF Tyre", "OSF Tyre", "NSR Tyre", "OSR Tyre",
	"Front Brakes", "Rear Brakes", "Brake Fluid",
	"Oil Level", "Coolant", "Screenwash", "Lights",
	"Wipers", "Suspension", "Exhaust", "Battery",
}

// Document type values
const (
	TypeInvoice = "Invoice"
	TypeQuote   = "Quote"
)

// Document status values
const (
	StatusDraft   = "Draft"
	StatusPending = "Pending"
)

// Payment status values
const (
	PaymentUnpaid  = "Unpaid"
	PaymentPaid    = "Paid"
	PaymentOverdue = "Overdue"
)

// Fleet status values
const (
	FleetAvailable = "Available"
	FleetOnLoan    = "On Loan"
)

// Booking status values
const (
	BookingBooked     = "Booked"
	BookingInProgress = "In Progress"
	BookingCompleted  = "Completed"
)

// Envelope carries the fields shared by every synced document.
type Envelope struct {
	ID            string `json:"id"`
	SchemaVersion int    `json:"schemaVersion"`
	CreatedAt     string `json:"createdAt"`
}

func (e *Envelope) GetID() string          { return e.ID }
func (e *Envelope) SetID(id string)        { e.ID = id }
func (e *Envelope) GetCreatedAt() string   { return e.CreatedAt }
func (e *Envelope) SetCreatedAt(ts string) { e.CreatedAt = ts }
func (e *Envelope) StampSchemaVersion()    { e.SchemaVersion = SchemaVersion }

// Record is implemented by every entity via its embedded Envelope.
type Record interface {
	GetID() string
	SetID(id string)
	GetCreatedAt() string
	SetCreatedAt(ts string)
	StampSchemaVersion()
}

// LineItem is one row on an invoice or quote. Description is the legacy
// field name some older documents carry instead of Desc.
type LineItem struct {
	ID          int64   `json:"id,omitempty"`
	Desc        string  `json:"desc"`
	Description string  `json:"description,omitempty"`
	Qty         int     `json:"qty"`
	Price       float64 `json:"price"`
}

type InvoiceDetails struct {
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerAddress string `json:"customerAddress"`
	Mileage         string `json:"mileage"`
	VRM             string `json:"vrm"`
}

type Invoice struct {
	Envelope
	VRM           string         `json:"vrm"`
	Make          string         `json:"make"`
	Model         string         `json:"model"`
	Customer      string         `json:"customer"`
	Date          string         `json:"date"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"paymentStatus"`
	Items         []LineItem     `json:"items"`
	Total         float64        `json:"total"`
	DisplayID     string         `json:"displayId"`
	Details       InvoiceDetails `json:"details"`
}

type LoanDetails struct {
	Customer string `json:"customer"`
	DateOut  string `json:"dateOut"`
	TimeOut  string `json:"timeOut"`
}

// FleetVehicle mileage and price are kept as strings because that is
// how existing documents were written by older clients.
type FleetVehicle struct {
	Envelope
	Make        string       `json:"make"`
	Model       string       `json:"model"`
	VRM         string       `json:"vrm"`
	Mileage     string       `json:"mileage"`
	Price       string       `json:"price"`
	Status      string       `json:"status"`
	LoanDetails *LoanDetails `json:"loanDetails"`
}

type Booking struct {
	Envelope
	VRM         string `json:"vrm"`
	Customer    string `json:"customer"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

type Customer struct {
	Envelope
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// VHCItem status is "green", "amber", "red" or "" when not yet inspected.
type VHCItem struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

type VHCReport struct {
	Envelope
	BookingID string    `json:"bookingId"`
	VRM       string    `json:"vrm"`
	Customer  string    `json:"customer"`
	Vehicle   string    `json:"vehicle"`
	Items     []VHCItem `json:"items"`
	Summary   string    `json:"summary"`
}

// NewVHCItems returns the full catalog in unset state.
func NewVHCItems() []VHCItem {
	items := make([]VHCItem, len(VHCItems))
	for i, name := range VHCItems {
		items[i] = VHCItem{Name: name}
	}
	return items
}

// NormalizeVRM uppercases a registration mark and strips everything
// that is not a letter or digit.
func NormalizeVRM(vrm string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(vrm) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GrossTotal computes the tax-inclusive total for a set of line items.
func GrossTotal(items []LineItem) float64 {
	var net float64
	for _, it := range items {
		net += float64(it.Qty) * it.Price
	}
	return round2(net * (1 + VATRate))
}

// NetVAT splits a gross total back into its net and VAT parts.
func NetVAT(gross float64) (net, vat float64) {
	net = round2(gross / (1 + VATRate))
	vat = round2(gross - net)
	return net, vat
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Normalize maps legacy invoice shapes onto the canonical one: the
// registration mark used to live only under details, and line items
// used to carry "description" instead of "desc".
func (inv *Invoice) Normalize() {
	if inv.VRM == "" {
		inv.VRM = inv.Details.VRM
	}
	if inv.Details.VRM == "" {
		inv.Details.VRM = inv.VRM
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = PaymentUnpaid
	}
	for i := range inv.Items {
		if inv.Items[i].Desc == "" && inv.Items[i].Description != "" {
			inv.Items[i].Desc = inv.Items[i].Description
		}
		inv.Items[i].Description = ""
	}
}

// Normalize enforces the loan invariant: loan details exist iff the
// vehicle is on loan.
func (v *FleetVehicle) Normalize() {
	v.VRM = NormalizeVRM(v.VRM)
	if v.Status == "" {
		v.Status = FleetAvailable
	}
	if v.Status != FleetOnLoan {
		v.LoanDetails = nil
	}
}

// Normalize seeds missing catalog items so every report always carries
// the full checklist.
func (r *VHCReport) Normalize() {
	if len(r.Items) == 0 {
		r.Items = NewVHCItems()
	}
}

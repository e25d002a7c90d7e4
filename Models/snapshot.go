package Models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Snapshot is the complete in-memory copy of all five collections. It
// is the sole source the API reads from; the local and remote stores
// are persistence mirrors.
type Snapshot struct {
	Invoices  []*Invoice      `json:"invoices"`
	Fleet     []*FleetVehicle `json:"fleet"`
	Bookings  []*Booking      `json:"bookings"`
	Customers []*Customer     `json:"customers"`
	VHC       []*VHCReport    `json:"vhc"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Invoices:  []*Invoice{},
		Fleet:     []*FleetVehicle{},
		Bookings:  []*Booking{},
		Customers: []*Customer{},
		VHC:       []*VHCReport{},
	}
}

// Init replaces nil collections with empty ones after unmarshalling.
func (s *Snapshot) Init() {
	if s.Invoices == nil {
		s.Invoices = []*Invoice{}
	}
	if s.Fleet == nil {
		s.Fleet = []*FleetVehicle{}
	}
	if s.Bookings == nil {
		s.Bookings = []*Booking{}
	}
	if s.Customers == nil {
		s.Customers = []*Customer{}
	}
	if s.VHC == nil {
		s.VHC = []*VHCReport{}
	}
}

// Normalize maps legacy document shapes onto the current schema.
func (s *Snapshot) Normalize() {
	s.Init()
	for _, inv := range s.Invoices {
		inv.Normalize()
	}
	for _, v := range s.Fleet {
		v.Normalize()
	}
	for _, r := range s.VHC {
		r.Normalize()
	}
}

// Records returns a collection as a generic record slice.
func (s *Snapshot) Records(coll string) ([]Record, error) {
	switch coll {
	case CollInvoices:
		out := make([]Record, len(s.Invoices))
		for i, r := range s.Invoices {
			out[i] = r
		}
		return out, nil
	case CollFleet:
		out := make([]Record, len(s.Fleet))
		for i, r := range s.Fleet {
			out[i] = r
		}
		return out, nil
	case CollBookings:
		out := make([]Record, len(s.Bookings))
		for i, r := range s.Bookings {
			out[i] = r
		}
		return out, nil
	case CollCustomers:
		out := make([]Record, len(s.Customers))
		for i, r := range s.Customers {
			out[i] = r
		}
		return out, nil
	case CollVHC:
		out := make([]Record, len(s.VHC))
		for i, r := range s.VHC {
			out[i] = r
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown collection %q", coll)
}

// Find returns the record with the given id, or nil.
func (s *Snapshot) Find(coll, id string) Record {
	recs, err := s.Records(coll)
	if err != nil {
		return nil
	}
	for _, r := range recs {
		if r.GetID() == id {
			return r
		}
	}
	return nil
}

// Upsert replaces the record with the same id, or prepends a new one.
func (s *Snapshot) Upsert(coll string, rec Record) error {
	switch coll {
	case CollInvoices:
		v, ok := rec.(*Invoice)
		if !ok {
			return fmt.Errorf("collection %s expects *Invoice, got %T", coll, rec)
		}
		s.Invoices = upsertByID(s.Invoices, v)
	case CollFleet:
		v, ok := rec.(*FleetVehicle)
		if !ok {
			return fmt.Errorf("collection %s expects *FleetVehicle, got %T", coll, rec)
		}
		s.Fleet = upsertByID(s.Fleet, v)
	case CollBookings:
		v, ok := rec.(*Booking)
		if !ok {
			return fmt.Errorf("collection %s expects *Booking, got %T", coll, rec)
		}
		s.Bookings = upsertByID(s.Bookings, v)
	case CollCustomers:
		v, ok := rec.(*Customer)
		if !ok {
			return fmt.Errorf("collection %s expects *Customer, got %T", coll, rec)
		}
		s.Customers = upsertByID(s.Customers, v)
	case CollVHC:
		v, ok := rec.(*VHCReport)
		if !ok {
			return fmt.Errorf("collection %s expects *VHCReport, got %T", coll, rec)
		}
		s.VHC = upsertByID(s.VHC, v)
	default:
		return fmt.Errorf("unknown collection %q", coll)
	}
	return nil
}

// Remove deletes the record with the given id. Returns true when a
// record was removed.
func (s *Snapshot) Remove(coll, id string) bool {
	switch coll {
	case CollInvoices:
		var removed bool
		s.Invoices, removed = removeByID(s.Invoices, id)
		return removed
	case CollFleet:
		var removed bool
		s.Fleet, removed = removeByID(s.Fleet, id)
		return removed
	case CollBookings:
		var removed bool
		s.Bookings, removed = removeByID(s.Bookings, id)
		return removed
	case CollCustomers:
		var removed bool
		s.Customers, removed = removeByID(s.Customers, id)
		return removed
	case CollVHC:
		var removed bool
		s.VHC, removed = removeByID(s.VHC, id)
		return removed
	}
	return false
}

// ReplaceCollection overwrites one collection wholesale from raw JSON,
// as delivered by a remote snapshot.
func (s *Snapshot) ReplaceCollection(coll string, raw []byte) error {
	switch coll {
	case CollInvoices:
		recs := []*Invoice{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", coll, err)
		}
		for _, r := range recs {
			r.Normalize()
		}
		s.Invoices = recs
	case CollFleet:
		recs := []*FleetVehicle{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", coll, err)
		}
		for _, r := range recs {
			r.Normalize()
		}
		s.Fleet = recs
	case CollBookings:
		recs := []*Booking{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", coll, err)
		}
		s.Bookings = recs
	case CollCustomers:
		recs := []*Customer{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", coll, err)
		}
		s.Customers = recs
	case CollVHC:
		recs := []*VHCReport{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return fmt.Errorf("decode %s snapshot: %w", coll, err)
		}
		for _, r := range recs {
			r.Normalize()
		}
		s.VHC = recs
	default:
		return fmt.Errorf("unknown collection %q", coll)
	}
	return nil
}

// FindCustomerByName looks a customer up by its natural key,
// case-insensitively.
func (s *Snapshot) FindCustomerByName(name string) *Customer {
	for _, c := range s.Customers {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// FindFleetByVRM returns the first fleet vehicle matching the
// registration mark.
func (s *Snapshot) FindFleetByVRM(vrm string) *FleetVehicle {
	vrm = NormalizeVRM(vrm)
	for _, v := range s.Fleet {
		if v.VRM == vrm {
			return v
		}
	}
	return nil
}

type identified interface {
	GetID() string
}

func upsertByID[T identified](list []T, rec T) []T {
	for i, existing := range list {
		if existing.GetID() == rec.GetID() {
			list[i] = rec
			return list
		}
	}
	return append([]T{rec}, list...)
}

func removeByID[T identified](list []T, id string) ([]T, bool) {
	for i, existing := range list {
		if existing.GetID() == id {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

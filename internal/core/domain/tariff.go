package domain

import "time"

// DeliveryType classifies which pricing field a box tariff was derived from.
type DeliveryType string

const (
	DeliveryStandard   DeliveryType = "Standard"
	DeliveryLiterBased DeliveryType = "Liter-based"
	DeliveryStorage    DeliveryType = "Storage"
	DeliveryExpr       DeliveryType = "Delivery"
	DeliveryUnknown    DeliveryType = "Unknown"
)

// DefaultBoxType is used when the source omits the box type name.
const DefaultBoxType = "Box"

// RawBoxTariff is one warehouseList entry as returned by the source API.
// It is kept verbatim on the stored tariff for audit.
type RawBoxTariff struct {
	WarehouseName             string `json:"warehouseName"`
	BoxTypeName               string `json:"boxTypeName,omitempty"`
	BoxDeliveryAndStorageExpr string `json:"boxDeliveryAndStorageExpr,omitempty"`
	BoxDeliveryBase           string `json:"boxDeliveryBase,omitempty"`
	BoxDeliveryLiter          string `json:"boxDeliveryLiter,omitempty"`
	BoxStorageBase            string `json:"boxStorageBase,omitempty"`
	BoxStorageLiter           string `json:"boxStorageLiter,omitempty"`
}

// Tariff is the canonical daily record. The tuple
// (Date, WarehouseName, BoxType, DeliveryType) is unique; a later write for
// the same key replaces the coefficient and raw payload instead of inserting
// a second row.
type Tariff struct {
	Date          time.Time
	WarehouseName string
	BoxType       string
	DeliveryType  DeliveryType
	Coefficient   float64
	Raw           RawBoxTariff
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SyncResult is the per-sink outcome of one sync cycle.
type SyncResult struct {
	Target      string
	Success     bool
	RowsWritten int
	Error       string
}

// DateFormat is the calendar-day format used for the source query parameter,
// storage keys and sheet output.
const DateFormat = "2006-01-02"

// Day truncates t to its calendar day, keeping the location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

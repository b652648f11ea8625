package domain

import "time"

// Meter is a utility meter record as returned by the upstream meters API.
type Meter struct {
	ID               string    `json:"id"`
	Types            []string  `json:"_type"`
	Area             AreaRef   `json:"area"`
	IsAutomatic      bool      `json:"is_automatic"`
	Communication    string    `json:"communication"`
	Description      string    `json:"description"`
	SerialNumber     string    `json:"serial_number"`
	InstallationDate string    `json:"installation_date"`
	BrandName        string    `json:"brand_name"`
	ModelName        string    `json:"model_name"`
	InitialValues    []float64 `json:"initial_values"`
}

type AreaRef struct {
	ID string `json:"id"`
}

// Address is the area record a meter points to.
type Address struct {
	ID        string `json:"id"`
	House     House  `json:"house"`
	StrNumber string `json:"str_number"`
}

type House struct {
	Address string `json:"address"`
}

// MetersPage is one offset/limit window of meters plus the server-reported total.
type MetersPage struct {
	Results []Meter `json:"results"`
	Count   int     `json:"count"`
}

type EventKind string

const (
	EventPageLoaded      EventKind = "page_loaded"
	EventAddressResolved EventKind = "address_resolved"
	EventMeterDeleted    EventKind = "meter_deleted"
)

// Event describes one store mutation. It is what subscribers, the MQTT topic and the journal carry.
type Event struct {
	ID        int64     `db:"id" json:"-"`
	Kind      EventKind `db:"kind" json:"kind"`
	SubjectID string    `db:"subject_id" json:"subject_id,omitempty"`
	Offset    int       `db:"page_offset" json:"offset"`
	Total     int       `db:"total" json:"total"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

package model

import (
	"strings"
	"time"
)

// TemplateKind identifies which cell layout a document follows.
type TemplateKind string

// Template kinds.
const (
	TemplateCurrent TemplateKind = "current"
	TemplateLegacy  TemplateKind = "legacy"
)

// Status is the commercial state of a quoted event.
type Status string

// Event statuses.
const (
	StatusActive    Status = "active"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// DateLayout is the canonical textual form of calendar dates in records.
const DateLayout = "2006-01-02"

// AddonItem is one paid add-on line of a quote.
type AddonItem struct {
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
}

// ExtractedRecord is the structured output of parsing one spreadsheet.
// Zero values mean unknown: "" for text and dates, 0 for numbers.
type ExtractedRecord struct {
	TemplateKind TemplateKind `json:"template_kind" yaml:"template_kind"`

	EventDate    string `json:"event_date,omitempty" yaml:"event_date,omitempty"`
	EventType    string `json:"event_type" yaml:"event_type"`
	MenuTier     string `json:"menu_tier" yaml:"menu_tier"`
	TimeRangeRaw string `json:"time_range_raw" yaml:"time_range_raw"`
	TimeStart    string `json:"time_start" yaml:"time_start"`
	TimeEnd      string `json:"time_end" yaml:"time_end"`
	GuestCount   int    `json:"guest_count" yaml:"guest_count"`

	ContactFirstName string `json:"contact_first_name" yaml:"contact_first_name"`
	ContactLastName  string `json:"contact_last_name" yaml:"contact_last_name"`
	Phone            string `json:"phone" yaml:"phone"`
	Email            string `json:"email" yaml:"email"`

	TotalAmount   float64 `json:"total_amount" yaml:"total_amount"`
	DepositAmount float64 `json:"deposit_amount" yaml:"deposit_amount"`
	BalanceDue    float64 `json:"balance_due" yaml:"balance_due"`

	GiftItems  []string    `json:"gift_items" yaml:"gift_items"`
	AddonItems []AddonItem `json:"addon_items" yaml:"addon_items"`

	Status Status `json:"status" yaml:"status"`

	SourceFileID     string     `json:"source_file_id" yaml:"source_file_id"`
	SourceFileName   string     `json:"source_file_name" yaml:"source_file_name"`
	SourceModifiedAt *time.Time `json:"source_modified_at,omitempty" yaml:"source_modified_at,omitempty"`
}

// ContactName joins the contact's first and last name.
func (r ExtractedRecord) ContactName() string {
	return strings.TrimSpace(r.ContactFirstName + " " + r.ContactLastName)
}

// PersistedAnalysis is an ExtractedRecord together with storage metadata.
type PersistedAnalysis struct {
	ID              string `json:"record_id" yaml:"record_id"`
	ExtractedRecord `yaml:",inline"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

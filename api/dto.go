/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple the
  ledger's domain model from the external contract: the wire layer can add
  display fields (like the formatted date range) without touching the ledger.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-ledger/ledger"
)

// =============================================================================
// LEAVE ENTRIES
// =============================================================================

// LeaveEntryDTO represents a leave entry in API responses. DateRange is the
// human-readable span rendering; it is display-only and never used in
// comparisons.
type LeaveEntryDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Days        int    `json:"days"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	DateRange   string `json:"dateRange,omitempty"`
}

// CreateLeaveRequest is the request to book a leave entry.
type CreateLeaveRequest struct {
	Type        string `json:"type"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// QuotaWarning is attached to a create response when the new entry pushes
// usage past the remaining balance under the "warn" enforcement level.
type QuotaWarning struct {
	Type          string `json:"type"`
	RequestedDays int    `json:"requestedDays"`
	RemainingDays int    `json:"remainingDays"`
	Message       string `json:"message"`
}

// CreateLeaveResponse wraps the created entry plus an optional quota warning.
type CreateLeaveResponse struct {
	Entry   LeaveEntryDTO `json:"entry"`
	Warning *QuotaWarning `json:"warning,omitempty"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a public holiday in API responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateHolidayRequest is the request to add a public holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarDayDTO is one cell of the month grid.
type CalendarDayDTO struct {
	Date        string   `json:"date"`
	InMonth     bool     `json:"inMonth"`
	Weekend     bool     `json:"weekend"`
	Holiday     bool     `json:"holiday"`
	HolidayName string   `json:"holidayName,omitempty"`
	LeaveTypes  []string `json:"leaveTypes,omitempty"`
	Selected    bool     `json:"selected"`
}

// CalendarResponse is the annotated month grid.
type CalendarResponse struct {
	Month string           `json:"month"`
	Days  []CalendarDayDTO `json:"days"`
}

// RangeResponse answers a selection-membership query.
type RangeResponse struct {
	Date    string `json:"date"`
	InRange bool   `json:"inRange"`
}

// =============================================================================
// ADVICE
// =============================================================================

// AdviceResponse wraps the advisor's plan. Available is false when no client
// is configured; OK is false when the gateway failed and the plan degraded to
// empty. A gateway failure is never an HTTP error.
type AdviceResponse struct {
	Available   bool            `json:"available"`
	OK          bool            `json:"ok"`
	Summary     string          `json:"summary,omitempty"`
	Suggestions []SuggestionDTO `json:"suggestions"`
}

// SuggestionDTO is one advisor suggestion.
type SuggestionDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Dates       string `json:"dates"`
	Benefit     string `json:"benefit"`
}

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toLeaveEntryDTO(e ledger.LeaveEntry, dateRange string) LeaveEntryDTO {
	return LeaveEntryDTO{
		ID:          e.ID,
		Type:        string(e.Type),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Days:        e.Days,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		DateRange:   dateRange,
	}
}

func toHolidayDTO(h ledger.PublicHoliday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date, Name: h.Name}
}

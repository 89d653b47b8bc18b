/*
handlers.go - HTTP handlers for the leave ledger

PURPOSE:
  Exposes the ledger over REST. Handles HTTP request/response, JSON
  serialization, the quota gate, and the single-flight guard around the
  advisor call. All domain behavior lives in ledger and daterange; handlers
  only translate.

ENDPOINTS:
  Leaves:
    GET    /api/leaves             List entries, most recent first
    POST   /api/leaves             Book an entry (quota gate applies)
    DELETE /api/leaves/{id}        Idempotent delete

  Holidays:
    GET    /api/holidays           List holidays
    POST   /api/holidays           Add a holiday
    POST   /api/holidays/defaults  Re-seed the two stock holidays
    DELETE /api/holidays/{id}      Idempotent delete

  Derived state:
    GET    /api/quota              Per-type {used,total,remaining}
    GET    /api/calendar           Annotated month grid
    GET    /api/range              Selection membership for the date picker

  Advice:
    POST   /api/advice             Advisor call (single-flight)

QUOTA GATE:
  Exceeding the remaining balance is a policy decision, not a ledger error.
  Under "warn" the entry is created and the response carries a warning; under
  "block" the request is refused with 422 and nothing is created.

ERROR HANDLING:
  - 400: malformed body, bad dates, unknown leave type
  - 404: unknown route only (deletes are idempotent, never 404)
  - 409: advice already in flight
  - 422: quota gate under "block"
  - 503: advice requested with no credential configured

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/advisor"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/daterange"
	"github.com/warp/leave-ledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Advisor may be nil,
// which is the disabled-feature state for the advice endpoint.
type Handler struct {
	Ledger      *ledger.Ledger
	Advisor     *advisor.Client
	Enforcement string
	logger      *zap.Logger

	// adviceInFlight guards the advisor call: while a request is running,
	// further requests are refused rather than duplicated.
	adviceInFlight atomic.Bool
}

// NewHandler creates a handler. enforcement is a config.Enforcement* value;
// advisorClient may be nil.
func NewHandler(l *ledger.Ledger, advisorClient *advisor.Client, enforcement string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if enforcement == "" {
		enforcement = config.EnforcementWarn
	}
	return &Handler{
		Ledger:      l,
		Advisor:     advisorClient,
		Enforcement: enforcement,
		logger:      logger,
	}
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// LEAVE ENDPOINTS
// =============================================================================

// ListLeaves returns all entries, most recently created first.
// GET /api/leaves
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	entries := h.Ledger.EntriesByRecency()

	dtos := make([]LeaveEntryDTO, 0, len(entries))
	for _, e := range entries {
		dateRange, err := daterange.FormatDateRange(e.StartDate, e.EndDate)
		if err != nil {
			dateRange = "" // display-only; a stale bad record must not break the list
		}
		dtos = append(dtos, toLeaveEntryDTO(e, dateRange))
	}

	writeJSON(w, http.StatusOK, map[string]any{"leaves": dtos})
}

// CreateLeave books a new entry after validating dates and applying the
// quota gate.
// POST /api/leaves
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	typ, err := ledger.ParseLeaveType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown leave type", err)
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "Start and end dates are required", nil)
		return
	}
	start, err := daterange.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := daterange.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "Start date is after end date", nil)
		return
	}

	projected, err := h.Ledger.ProjectedDays(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to compute business days", err)
		return
	}

	// Quota gate. The ledger never rejects on quota; this is the
	// presentation-layer policy point.
	var warning *QuotaWarning
	remaining := h.Ledger.QuotaSummary()[typ].Remaining
	if projected > remaining {
		if h.Enforcement == config.EnforcementBlock {
			writeError(w, http.StatusUnprocessableEntity, "Insufficient remaining quota", nil)
			return
		}
		warning = &QuotaWarning{
			Type:          string(typ),
			RequestedDays: projected,
			RemainingDays: remaining,
			Message:       "entry exceeds the remaining balance for this leave type",
		}
	}

	entry, err := h.Ledger.AddEntry(r.Context(), typ, req.StartDate, req.EndDate, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create leave entry", err)
		return
	}

	dateRange, _ := daterange.FormatDateRange(entry.StartDate, entry.EndDate)
	writeJSON(w, http.StatusCreated, CreateLeaveResponse{
		Entry:   toLeaveEntryDTO(entry, dateRange),
		Warning: warning,
	})
}

// DeleteLeave removes an entry. Unknown ids are a no-op, never a 404.
// DELETE /api/leaves/{id}
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Ledger.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete leave entry", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns all configured holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays := h.Ledger.Holidays()

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}

	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday adds a holiday. Existing entry snapshots are untouched.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	holiday, err := h.Ledger.AddHoliday(r.Context(), req.Date, req.Name)
	switch {
	case errors.Is(err, ledger.ErrHolidayIncomplete):
		writeError(w, http.StatusBadRequest, "Date and name are required", err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid holiday date (use YYYY-MM-DD)", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday. Unknown ids are a no-op.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Ledger.RemoveHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// SeedDefaultHolidays re-adds the stock holidays for the current year.
// POST /api/holidays/defaults
func (h *Handler) SeedDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.Ledger.SeedDefaultHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed default holidays", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"count":  len(seeded),
	})
}

// =============================================================================
// DERIVED STATE ENDPOINTS
// =============================================================================

// GetQuota returns the per-type usage summary.
// GET /api/quota
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	summary := h.Ledger.QuotaSummary()

	out := make(map[string]ledger.Quota, len(summary))
	for typ, q := range summary {
		out[string(typ)] = q
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCalendar returns the annotated month grid.
// GET /api/calendar?month=YYYY-MM&start=YYYY-MM-DD&end=YYYY-MM-DD
//
// month defaults to the current month. start/end describe the in-progress
// picker selection and may be absent or partial.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ref := daterange.Today()
	if month := r.URL.Query().Get("month"); month != "" {
		parsed, err := daterange.ParseDay(month + "-01")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
			return
		}
		ref = parsed
	}
	selStart := r.URL.Query().Get("start")
	selEnd := r.URL.Query().Get("end")

	holidayNames := make(map[string]string)
	for _, hol := range h.Ledger.Holidays() {
		if _, ok := holidayNames[hol.Date]; !ok {
			holidayNames[hol.Date] = hol.Name
		}
	}
	entries := h.Ledger.Entries()

	grid := daterange.MonthGrid(ref)
	days := make([]CalendarDayDTO, 0, len(grid))
	for _, d := range grid {
		name, isHoliday := holidayNames[d.String()]

		var leaveTypes []string
		for _, e := range entries {
			in, err := daterange.DateInRange(d, e.StartDate, e.EndDate)
			if err == nil && in {
				leaveTypes = append(leaveTypes, string(e.Type))
			}
		}

		selected := false
		if selStart != "" {
			in, err := daterange.DateInRange(d, selStart, selEnd)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid selection dates", err)
				return
			}
			selected = in
		}

		days = append(days, CalendarDayDTO{
			Date:        d.String(),
			InMonth:     d.Month() == ref.Month() && d.Year() == ref.Year(),
			Weekend:     d.IsWeekend(),
			Holiday:     isHoliday,
			HolidayName: name,
			LeaveTypes:  leaveTypes,
			Selected:    selected,
		})
	}

	writeJSON(w, http.StatusOK, CalendarResponse{
		Month: ref.Format("2006-01"),
		Days:  days,
	})
}

// CheckRange answers a single membership query for the two-click picker.
// GET /api/range?date=YYYY-MM-DD&start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) CheckRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required", nil)
		return
	}
	d, err := daterange.ParseDay(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	in, err := daterange.DateInRange(d, q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid selection dates", err)
		return
	}

	writeJSON(w, http.StatusOK, RangeResponse{Date: date, InRange: in})
}

// =============================================================================
// ADVICE ENDPOINT
// =============================================================================

// RequestAdvice asks the advisor for a leave plan from a snapshot of current
// state. Single-flight: a second request while one is running gets 409.
// Gateway failures degrade to an empty plan, never an HTTP error.
// POST /api/advice
func (h *Handler) RequestAdvice(w http.ResponseWriter, r *http.Request) {
	if h.Advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, AdviceResponse{
			Available:   false,
			Suggestions: []SuggestionDTO{},
		})
		return
	}

	if !h.adviceInFlight.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "An advice request is already in progress", nil)
		return
	}
	defer h.adviceInFlight.Store(false)

	summary := h.Ledger.QuotaSummary()
	remaining := make(map[ledger.LeaveType]int, len(summary))
	for typ, q := range summary {
		remaining[typ] = q.Remaining
	}

	plan, err := h.Advisor.SuggestPlan(r.Context(), advisor.PlanRequest{
		Entries:   h.Ledger.Entries(),
		Holidays:  h.Ledger.Holidays(),
		Totals:    h.Ledger.Totals(),
		Remaining: remaining,
		Year:      time.Now().Year(),
	})
	if err != nil {
		h.logger.Warn("advice request failed", zap.Error(err))
		writeJSON(w, http.StatusOK, AdviceResponse{
			Available:   true,
			OK:          false,
			Suggestions: []SuggestionDTO{},
		})
		return
	}

	suggestions := make([]SuggestionDTO, 0, len(plan.Suggestions))
	for _, s := range plan.Suggestions {
		suggestions = append(suggestions, SuggestionDTO{
			Title:       s.Title,
			Description: s.Description,
			Dates:       s.Dates,
			Benefit:     s.Benefit,
		})
	}

	writeJSON(w, http.StatusOK, AdviceResponse{
		Available:   true,
		OK:          true,
		Summary:     plan.Summary,
		Suggestions: suggestions,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

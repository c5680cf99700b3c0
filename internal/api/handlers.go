package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/calendar"
	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/pkg/dateutil"
)

// CalendarService is the resolver as seen by the handlers
type CalendarService interface {
	earnings.HolidayProvider
	Resolve(ctx context.Context, year int) *calendar.Calendar
	Refresh(ctx context.Context, year int) *calendar.Calendar
	Clear()
}

// Handler serves the JSON API
type Handler struct {
	engine   *earnings.Engine
	calendar CalendarService
	settings earnings.ScheduleSettings
	logger   *zap.Logger
}

// NewHandler creates a new Handler computing with the configured settings by default
func NewHandler(engine *earnings.Engine, cal CalendarService, settings earnings.ScheduleSettings, logger *zap.Logger) *Handler {
	return &Handler{
		engine:   engine,
		calendar: cal,
		settings: settings,
		logger:   logger,
	}
}

// ensureYear resolves the current year. A cached or failed year costs nothing;
// retries are left to Refresh.
func (h *Handler) ensureYear(ctx context.Context) {
	h.calendar.Resolve(ctx, h.engine.Now().Year())
}

// GetResults computes results for the configured settings.
// GET /api/results
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	h.ensureYear(r.Context())
	writeJSON(w, http.StatusOK, NewResultsDTO(h.engine.Calculate(h.settings)))
}

// CalculateResults computes results for settings supplied in the body.
// POST /api/results
func (h *Handler) CalculateResults(w http.ResponseWriter, r *http.Request) {
	settings := h.settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	h.ensureYear(r.Context())
	writeJSON(w, http.StatusOK, NewResultsDTO(h.engine.Calculate(settings)))
}

// GetCalendar returns the resolver status and the cached records.
// GET /api/calendar
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	h.ensureYear(r.Context())
	writeJSON(w, http.StatusOK, h.calendarDTO())
}

// RefreshCalendar drops the cache and resolves the current year again.
// POST /api/calendar/refresh
func (h *Handler) RefreshCalendar(w http.ResponseWriter, r *http.Request) {
	year := h.engine.Now().Year()
	h.calendar.Refresh(r.Context(), year)

	_, status := h.calendar.Snapshot()
	h.logger.Info("Holiday calendar refreshed via API",
		zap.Int("year", year),
		zap.Bool("loaded", status.Loaded),
		zap.Int("records", status.Count))

	writeJSON(w, http.StatusOK, h.calendarDTO())
}

// ClearCalendar drops the cached calendar; the next request resolves again.
// DELETE /api/calendar
func (h *Handler) ClearCalendar(w http.ResponseWriter, r *http.Request) {
	h.calendar.Clear()
	writeJSON(w, http.StatusOK, h.calendarDTO())
}

// GetNextHoliday returns the next rest day and the countdown to its break.
// GET /api/holidays/next
func (h *Handler) GetNextHoliday(w http.ResponseWriter, r *http.Request) {
	h.ensureYear(r.Context())

	cal, status := h.calendar.Snapshot()
	if !status.Loaded {
		writeError(w, http.StatusServiceUnavailable, "Holiday calendar not loaded", nil)
		return
	}

	next, ok := cal.NextHoliday(h.engine.Now())
	if !ok {
		writeError(w, http.StatusNotFound, "No upcoming holiday", nil)
		return
	}

	writeJSON(w, http.StatusOK, NextHolidayDTO{
		Date:      dateutil.DateKey(next.Date),
		Name:      next.Name,
		Countdown: toHolidayCountdownDTO(h.engine.TimeUntilNextHoliday(h.settings)),
	})
}

// Healthz reports liveness.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	_, status := h.calendar.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"calendar": status,
	})
}

func (h *Handler) calendarDTO() CalendarDTO {
	cal, status := h.calendar.Snapshot()
	records := cal.Records()
	if records == nil {
		records = []calendar.HolidayRecord{}
	}
	return CalendarDTO{
		Status:  status,
		Records: records,
	}
}

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

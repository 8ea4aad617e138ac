package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/export"
	"shuttlestats/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves the planned-session calendar.
type ScheduleHandler struct {
	hub     *service.Hub
	archive *export.Archive
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(hub *service.Hub, archive *export.Archive) *ScheduleHandler {
	return &ScheduleHandler{hub: hub, archive: archive}
}

// RecurringRequest is a base session plus its repeat rule.
type RecurringRequest struct {
	Session    domain.ScheduleSession `json:"session" binding:"required"`
	Recurrence domain.Recurrence      `json:"recurrence" binding:"required"`
}

// List returns sessions for a calendar view (?view=today|week|month|
// upcoming|all, default all), soonest first.
func (h *ScheduleHandler) List(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Schedule.View(c.DefaultQuery("view", service.ScheduleViewAll)))
}

// Create plans a single session.
func (h *ScheduleHandler) Create(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var session domain.ScheduleSession
	if err := c.ShouldBindJSON(&session); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := ws.Schedule.Create(c.Request.Context(), &session)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CreateRecurring expands a recurrence rule into individual sessions.
func (h *ScheduleHandler) CreateRecurring(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := ws.Schedule.CreateRecurring(c.Request.Context(), &req.Session, req.Recurrence)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update merges the request body into the stored session.
func (h *ScheduleHandler) Update(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	if err := json.Unmarshal(body, &domain.ScheduleSession{}); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, err := ws.Schedule.Update(c.Request.Context(), c.Param("id"), func(s *domain.ScheduleSession) {
		meta := s.Meta
		_ = json.Unmarshal(body, s) // body shape checked above
		s.Meta = meta
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a planned session; requires ?confirm=true.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	if err := ws.Schedule.Delete(c.Request.Context(), c.Param("id"), deleteConfirmed(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats summarizes this week's schedule.
func (h *ScheduleHandler) Stats(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Schedule.Stats())
}

// ReminderSettings returns the persisted reminder preferences.
func (h *ScheduleHandler) ReminderSettings(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Schedule.ReminderSettings())
}

// SaveReminderSettings stores new reminder preferences.
func (h *ScheduleHandler) SaveReminderSettings(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var settings domain.ReminderSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := ws.Schedule.SaveReminderSettings(settings); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save reminder settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Export renders the schedule as an iCalendar file.
func (h *ScheduleHandler) Export(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	sessions := ws.Schedule.View(service.ScheduleViewAll)
	if len(sessions) == 0 {
		abortWithError(c, http.StatusNotFound, "No sessions to export.")
		return
	}

	payload := []byte(export.ScheduleICS(sessions, time.Now(), time.Local))
	key := fmt.Sprintf("exports/%s/shuttlestats-schedule.ics", ws.Owner)
	writeExport(c, h.archive, key, "shuttlestats-schedule.ics", "text/calendar; charset=utf-8", payload)
}

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

// TrainingHandler serves the training-session log.
type TrainingHandler struct {
	hub     *service.Hub
	archive *export.Archive // nil when archiving is disabled
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(hub *service.Hub, archive *export.Archive) *TrainingHandler {
	return &TrainingHandler{hub: hub, archive: archive}
}

func sortTrainingByDateDesc(a, b *domain.TrainingSession) bool { return a.Date > b.Date }

// List returns the owner's sessions, newest first.
func (h *TrainingHandler) List(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Training.List(nil, sortTrainingByDateDesc))
}

// Create logs a new session and bumps matching goals.
func (h *TrainingHandler) Create(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var session domain.TrainingSession
	if err := c.ShouldBindJSON(&session); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := ws.Training.Create(c.Request.Context(), &session)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := ws.Goals.SyncWithActivity(c.Request.Context(), ws.Training.Count(), ws.Matches.Count()); err != nil {
		// Goal sync is best effort; the session itself is saved.
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update merges the request body into the stored session.
func (h *TrainingHandler) Update(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	if err := json.Unmarshal(body, &domain.TrainingSession{}); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, err := ws.Training.Update(c.Request.Context(), c.Param("id"), func(s *domain.TrainingSession) {
		meta := s.Meta
		_ = json.Unmarshal(body, s) // body shape checked above
		s.Meta = meta               // id, owner and createdAt are not client-writable
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a session; requires ?confirm=true.
func (h *TrainingHandler) Delete(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	if err := ws.Training.Delete(c.Request.Context(), c.Param("id"), deleteConfirmed(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns the aggregate training figures.
func (h *TrainingHandler) Stats(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Training.Stats())
}

// Export renders the training log as CSV.
func (h *TrainingHandler) Export(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	sessions := ws.Training.List(nil, sortTrainingByDateDesc)
	if len(sessions) == 0 {
		abortWithError(c, http.StatusNotFound, "No training data to export.")
		return
	}

	filename := fmt.Sprintf("shuttlestats_training_data_%s.csv", time.Now().Format(domain.DateLayout))
	key := fmt.Sprintf("exports/%s/%s", ws.Owner, filename)
	writeExport(c, h.archive, key, filename, "text/csv; charset=utf-8", []byte(export.TrainingCSV(sessions)))
}

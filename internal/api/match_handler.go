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

// MatchHandler serves the match log.
type MatchHandler struct {
	hub     *service.Hub
	archive *export.Archive
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(hub *service.Hub, archive *export.Archive) *MatchHandler {
	return &MatchHandler{hub: hub, archive: archive}
}

func sortMatchByDateDesc(a, b *domain.Match) bool { return a.Date > b.Date }

// List returns the owner's matches, newest first.
func (h *MatchHandler) List(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Matches.List(nil, sortMatchByDateDesc))
}

// Create records a match. The win/loss outcome is derived from the set
// scores, never taken from the request.
func (h *MatchHandler) Create(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var match domain.Match
	if err := c.ShouldBindJSON(&match); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := ws.Matches.Create(c.Request.Context(), &match)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := ws.Goals.SyncWithActivity(c.Request.Context(), ws.Training.Count(), ws.Matches.Count()); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update merges the request body into the stored match and re-derives
// the outcome.
func (h *MatchHandler) Update(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	if err := json.Unmarshal(body, &domain.Match{}); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, err := ws.Matches.Update(c.Request.Context(), c.Param("id"), func(m *domain.Match) {
		meta := m.Meta
		_ = json.Unmarshal(body, m) // body shape checked above
		m.Meta = meta
		m.DeriveResult()
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a match; requires ?confirm=true.
func (h *MatchHandler) Delete(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	if err := ws.Matches.Delete(c.Request.Context(), c.Param("id"), deleteConfirmed(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns totals, streak and the skill analysis.
func (h *MatchHandler) Stats(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Matches.Stats())
}

// Export renders the match log as CSV.
func (h *MatchHandler) Export(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	matches := ws.Matches.List(nil, sortMatchByDateDesc)
	if len(matches) == 0 {
		abortWithError(c, http.StatusNotFound, "No match data to export.")
		return
	}

	filename := fmt.Sprintf("shuttlestats_match_data_%s.csv", time.Now().Format(domain.DateLayout))
	key := fmt.Sprintf("exports/%s/%s", ws.Owner, filename)
	writeExport(c, h.archive, key, filename, "text/csv; charset=utf-8", []byte(export.MatchCSV(matches)))
}

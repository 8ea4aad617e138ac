package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"shuttlestats/backend/internal/domain"
	"shuttlestats/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GoalHandler serves the goal list.
type GoalHandler struct {
	hub *service.Hub
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(hub *service.Hub) *GoalHandler {
	return &GoalHandler{hub: hub}
}

// ProgressRequest carries a new progress value.
type ProgressRequest struct {
	Current float64 `json:"current"`
}

// List returns goals through the named filter and sort
// (?filter=all|active|completed|overdue, ?sort=newest|oldest|deadline|
// priority).
func (h *GoalHandler) List(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	goals := ws.Goals.Filtered(
		c.DefaultQuery("filter", service.GoalFilterAll),
		c.DefaultQuery("sort", service.GoalSortNewest),
	)
	c.JSON(http.StatusOK, goals)
}

// Create adds a goal.
func (h *GoalHandler) Create(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var goal domain.Goal
	if err := c.ShouldBindJSON(&goal); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := ws.Goals.Create(c.Request.Context(), &goal)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update merges the request body into the stored goal.
func (h *GoalHandler) Update(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}
	if err := json.Unmarshal(body, &domain.Goal{}); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	updated, err := ws.Goals.Update(c.Request.Context(), c.Param("id"), func(g *domain.Goal) {
		meta := g.Meta
		_ = json.Unmarshal(body, g) // body shape checked above
		g.Meta = meta
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleComplete flips a goal's completion state.
func (h *GoalHandler) ToggleComplete(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	goal, err := ws.Goals.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// UpdateProgress records a new progress value; reaching the target
// auto-completes the goal.
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	goal, err := ws.Goals.UpdateProgress(c.Request.Context(), c.Param("id"), req.Current)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Delete removes a goal; requires ?confirm=true.
func (h *GoalHandler) Delete(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	if err := ws.Goals.Delete(c.Request.Context(), c.Param("id"), deleteConfirmed(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns the goal counters.
func (h *GoalHandler) Stats(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Goals.Stats())
}

// Sync bumps goal progress from the current activity totals.
func (h *GoalHandler) Sync(c *gin.Context) {
	ws, ok := workspace(c, h.hub)
	if !ok {
		return
	}
	if err := ws.Goals.SyncWithActivity(c.Request.Context(), ws.Training.Count(), ws.Matches.Count()); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.Goals.Stats())
}

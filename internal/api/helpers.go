package api

import (
	"errors"
	"net/http"

	"shuttlestats/backend/internal/export"
	"shuttlestats/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// writeServiceError translates manager errors into HTTP statuses. A
// remote timeout is not a failure: the write is still in flight, so the
// request is accepted rather than rejected.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConfirmationRequired):
		abortWithError(c, http.StatusBadRequest, "delete requires confirm=true")
	case errors.Is(err, service.ErrRecordNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStillSyncing):
		c.AbortWithStatusJSON(http.StatusAccepted, gin.H{
			"status":  "syncing",
			"message": "Network is slow. Your entry will appear once synced.",
		})
	case errors.Is(err, service.ErrTornDown):
		abortWithError(c, http.StatusServiceUnavailable, "workspace is shutting down")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// workspace resolves the per-owner manager set for the request.
func workspace(c *gin.Context, hub *service.Hub) (*service.OwnerWorkspace, bool) {
	owner, err := ownerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve request owner")
		return nil, false
	}
	ws, err := hub.For(c.Request.Context(), owner)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return ws, true
}

// deleteConfirmed reads the confirmation flag every delete requires.
func deleteConfirmed(c *gin.Context) bool {
	return c.Query("confirm") == "true"
}

// writeExport serves a generated export file. With ?archive=true the
// file is uploaded to the archive instead and a presigned download URL
// returned.
func writeExport(c *gin.Context, archive *export.Archive, key, filename, contentType string, payload []byte) {
	if c.Query("archive") == "true" {
		if archive == nil {
			abortWithError(c, http.StatusBadRequest, "export archive is not configured")
			return
		}
		ctx := c.Request.Context()
		if err := archive.Upload(ctx, key, contentType, payload); err != nil {
			abortWithError(c, http.StatusBadGateway, "Failed to archive export")
			return
		}
		url, err := archive.DownloadURL(ctx, key, 0)
		if err != nil {
			abortWithError(c, http.StatusBadGateway, "Failed to create download URL")
			return
		}
		c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

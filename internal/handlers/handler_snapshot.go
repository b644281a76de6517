package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/core/services"
	"github.com/hucha-app/hucha/internal/dto"
	"github.com/hucha-app/hucha/internal/middleware"
)

// snapshotHandler serves the full-document snapshot API. There are exactly
// two operations: read the whole document, replace the whole document.
type snapshotHandler struct {
	snapshotService *services.SnapshotService
}

func newSnapshotHandler(ss *services.SnapshotService) *snapshotHandler {
	return &snapshotHandler{snapshotService: ss}
}

// registerSnapshotRoutes registers routes related to the snapshot document.
func registerSnapshotRoutes(rg *gin.RouterGroup, snapshotService *services.SnapshotService) {
	h := newSnapshotHandler(snapshotService)

	data := rg.Group("/data")
	{
		data.GET("", h.getData)
		data.PUT("", h.putData)
		// POST kept for clients that predate the PUT route
		data.POST("", h.putData)
	}
}

// getData returns the complete persisted snapshot.
func (h *snapshotHandler) getData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snap, err := h.snapshotService.GetData(c.Request.Context())
	if err != nil {
		logger.Error("Failed to read snapshot", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read data"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotPayload(*snap))
}

// putData replaces the persisted snapshot with the request body.
func (h *snapshotHandler) putData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var payload dto.SnapshotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn("Failed to bind snapshot payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid snapshot payload: " + err.Error()})
		return
	}

	if err := h.snapshotService.SaveData(c.Request.Context(), payload.ToDomain()); err != nil {
		logger.Error("Failed to save snapshot", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

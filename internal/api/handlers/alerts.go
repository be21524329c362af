package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/alerts"
	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/storage"
	"github.com/your-org/firewatch/pkg/dto"
)

type AlertHandler struct {
	feed  *alerts.Feed
	minio *storage.MinIOStore
}

func NewAlertHandler(feed *alerts.Feed, minio *storage.MinIOStore) *AlertHandler {
	return &AlertHandler{feed: feed, minio: minio}
}

// List returns all alerts, or only the ones correlated to a camera when
// the camera_id query parameter is set. An unknown camera yields an empty
// list, not an error.
func (h *AlertHandler) List(c *gin.Context) {
	var all []models.Alert
	if cameraID := c.Query("camera_id"); cameraID != "" {
		all = h.feed.ForCamera(cameraID)
	} else {
		all = h.feed.List()
	}

	resp := make([]dto.AlertResponse, 0, len(all))
	for _, a := range all {
		resp = append(resp, alertToResponse(a))
	}

	c.JSON(http.StatusOK, dto.AlertListResponse{Alerts: resp, Total: len(resp)})
}

// Snapshot proxies the alert snapshot image from object storage.
func (h *AlertHandler) Snapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	alert, ok := h.feed.Find(id)
	if !ok || alert.SnapshotKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}

	if h.minio == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot storage not configured"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), alert.SnapshotKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

func alertToResponse(a models.Alert) dto.AlertResponse {
	return dto.AlertResponse{
		ID:          a.ID,
		CameraID:    a.CameraID,
		Timestamp:   a.Timestamp.Format(time.RFC3339),
		Severity:    string(a.Severity),
		Location:    a.Location,
		Description: a.Description,
		ImageURL:    a.ImageURL,
	}
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/registry"
	"github.com/your-org/firewatch/pkg/dto"
)

type CameraHandler struct {
	registry *registry.Registry
}

func NewCameraHandler(reg *registry.Registry) *CameraHandler {
	return &CameraHandler{registry: reg}
}

func (h *CameraHandler) List(c *gin.Context) {
	cameras := h.registry.List()

	resp := make([]dto.CameraResponse, 0, len(cameras))
	for _, cam := range cameras {
		resp = append(resp, cameraToResponse(cam))
	}

	c.JSON(http.StatusOK, dto.CameraListResponse{Cameras: resp, Total: len(resp)})
}

func (h *CameraHandler) Create(c *gin.Context) {
	var req dto.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cam, err := h.registry.Add(c.Request.Context(), models.CameraCandidate{
		CameraID:       req.CameraID,
		StreamEndpoint: req.StreamEndpoint,
		Location:       req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrMissingField), errors.Is(err, registry.ErrInvalidEndpoint):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, registry.ErrDuplicateCamera):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not save"})
		}
		return
	}

	c.JSON(http.StatusCreated, cameraToResponse(cam))
}

func (h *CameraHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	if err := h.registry.Remove(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func cameraToResponse(cam models.Camera) dto.CameraResponse {
	return dto.CameraResponse{
		ID:             cam.ID,
		CameraID:       cam.CameraID,
		StreamEndpoint: cam.StreamEndpoint,
		Location:       cam.Location,
		CreatedAt:      cam.CreatedAt.Format(time.RFC3339),
		IsOnline:       cam.IsOnline,
	}
}

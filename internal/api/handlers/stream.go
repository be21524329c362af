package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/firewatch/internal/registry"
	"github.com/your-org/firewatch/internal/session"
	"github.com/your-org/firewatch/pkg/dto"
)

type StreamHandler struct {
	registry *registry.Registry
	sessions *session.Manager
}

func NewStreamHandler(reg *registry.Registry, mgr *session.Manager) *StreamHandler {
	return &StreamHandler{registry: reg, sessions: mgr}
}

// Start opens a playback session. The response is sent once the session has
// settled into playing or failed, so the client gets the specific reason
// instead of a fire-and-forget acknowledgement.
func (h *StreamHandler) Start(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endpoint := req.Endpoint
	if req.CameraID != "" {
		cam, ok := h.registry.Find(req.CameraID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
			return
		}
		endpoint = cam.StreamEndpoint
	}
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "camera_id or endpoint required"})
		return
	}

	sess, err := h.sessions.Start(c.Request.Context(), endpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sess.Wait(c.Request.Context()); err != nil {
		if errors.Is(err, session.ErrPlaybackFailed) {
			c.JSON(http.StatusBadGateway, sessionToResponse(sess))
			return
		}
		// Cancelled by the client or replaced by a newer session.
		c.JSON(http.StatusConflict, sessionToResponse(sess))
		return
	}

	c.JSON(http.StatusOK, sessionToResponse(sess))
}

func (h *StreamHandler) Stop(c *gin.Context) {
	h.sessions.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *StreamHandler) Current(c *gin.Context) {
	sess := h.sessions.Current()
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"state": "idle"})
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(sess))
}

func sessionToResponse(s *session.Session) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:        s.ID,
		Endpoint:  s.TargetEndpoint,
		State:     string(s.State()),
		StartedAt: s.StartedAt.Format(time.RFC3339),
	}
	if err := s.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

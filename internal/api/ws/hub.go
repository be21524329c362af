package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
	"github.com/your-org/firewatch/pkg/dto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// subscription is one connected client together with its alert filters.
type subscription struct {
	conn     *websocket.Conn
	send     chan []byte
	cameraID string
	severity models.Severity
}

// wants reports whether the alert passes the subscription's filters.
func (s *subscription) wants(a models.Alert) bool {
	if s.cameraID != "" && a.CameraID != s.cameraID {
		return false
	}
	if s.severity != "" && a.Severity != s.severity {
		return false
	}
	return true
}

// Hub fans ingested alerts out to websocket subscribers. Filters are applied
// to the alert record before delivery; each broadcast is encoded once, not
// per subscriber.
type Hub struct {
	alerts     chan models.Alert
	register   chan *subscription
	unregister chan *subscription
	closed     chan struct{}
	count      atomic.Int32

	// subscriptions is owned by the Run goroutine; nothing else touches it.
	subscriptions map[*subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		alerts:        make(chan models.Alert, 256),
		register:      make(chan *subscription),
		unregister:    make(chan *subscription),
		closed:        make(chan struct{}),
		subscriptions: make(map[*subscription]struct{}),
	}
}

// Run delivers alerts until ctx is cancelled, then closes every open
// connection. Call it in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.closed)
			for sub := range h.subscriptions {
				delete(h.subscriptions, sub)
				close(sub.send)
			}
			h.count.Store(0)
			observability.WSConnections.Set(0)
			return

		case sub := <-h.register:
			h.subscriptions[sub] = struct{}{}
			h.count.Add(1)
			observability.WSConnections.Inc()
			slog.Debug("alert subscriber added", "camera_id", sub.cameraID, "severity", sub.severity)

		case sub := <-h.unregister:
			h.drop(sub)

		case a := <-h.alerts:
			data, err := json.Marshal(alertEnvelope(a))
			if err != nil {
				slog.Error("marshal alert for push", "error", err)
				continue
			}
			for sub := range h.subscriptions {
				if !sub.wants(a) {
					continue
				}
				select {
				case sub.send <- data:
				default:
					// Subscriber is too far behind to be worth keeping.
					h.drop(sub)
				}
			}
		}
	}
}

func (h *Hub) drop(sub *subscription) {
	if _, ok := h.subscriptions[sub]; !ok {
		return
	}
	delete(h.subscriptions, sub)
	close(sub.send)
	h.count.Add(-1)
	observability.WSConnections.Dec()
}

// BroadcastAlert queues one alert for fan-out. Delivery is best-effort: if
// the hub's queue is full the alert is dropped for push, never for the feed.
func (h *Hub) BroadcastAlert(a models.Alert) {
	select {
	case h.alerts <- a:
	default:
		slog.Warn("alert push queue full, dropping", "camera_id", a.CameraID)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	return int(h.count.Load())
}

func alertEnvelope(a models.Alert) dto.WSAlert {
	return dto.WSAlert{
		Type:     "alert",
		CameraID: a.CameraID,
		Data: dto.AlertResponse{
			ID:          a.ID,
			CameraID:    a.CameraID,
			Timestamp:   a.Timestamp.Format(time.RFC3339),
			Severity:    string(a.Severity),
			Location:    a.Location,
			Description: a.Description,
			ImageURL:    a.ImageURL,
		},
	}
}

// HandleWS upgrades the request and registers the subscription. The
// camera_id and severity query parameters narrow what the client receives.
func (h *Hub) HandleWS(c *gin.Context) {
	severity := models.Severity(c.Query("severity"))
	if severity != "" && !severity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity filter"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "error", err)
		return
	}

	sub := &subscription{
		conn:     conn,
		send:     make(chan []byte, 64),
		cameraID: c.Query("camera_id"),
		severity: severity,
	}

	select {
	case h.register <- sub:
	case <-h.closed:
		conn.Close()
		return
	}

	go sub.writeLoop()
	go sub.readLoop(h)
}

func (s *subscription) writeLoop() {
	defer s.conn.Close()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	// send was closed by the hub: say goodbye before dropping the conn.
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (s *subscription) readLoop(h *Hub) {
	defer s.conn.Close()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
		// Inbound frames are ignored; the loop only detects closure.
	}
	select {
	case h.unregister <- s:
	case <-h.closed:
	}
}

package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/feed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	feedUnavailableMessage = "feed unavailable"
)

// Subscriber hands out change feed subscriptions
type Subscriber interface {
	Subscribe() (*feed.Subscription, error)
}

// FeedHandler upgrades the request to a WebSocket and streams change events until either side goes away.
type FeedHandler struct {
	hub        Subscriber
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	logger     *slog.Logger
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, err := h.hub.Subscribe()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to subscribe to feed", "error", err)
		response.JSONErrorResponse(w, http.StatusServiceUnavailable, feedUnavailableMessage)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.WarnContext(r.Context(), "failed to upgrade feed connection", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.InfoContext(r.Context(), "feed_client_connected", "remote_addr", r.RemoteAddr)

	done := make(chan struct{})
	go h.readPump(conn, done)

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				h.logger.WarnContext(r.Context(), "failed to write feed event", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.logger.InfoContext(r.Context(), "feed_client_disconnected", "remote_addr", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readPump consumes client frames so pongs and close frames are processed. It closes done when the peer is gone.
func (h *FeedHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	pongTimeout := h.pingPeriod * 10 / 9
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NewFeedHandler creates a FeedHandler. An empty allowedOrigins accepts only same-origin requests.
func NewFeedHandler(hub Subscriber, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if len(allowedOrigins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		}
	}

	return &FeedHandler{
		hub:        hub,
		upgrader:   upgrader,
		pingPeriod: pingPeriod,
		logger:     logger,
	}
}

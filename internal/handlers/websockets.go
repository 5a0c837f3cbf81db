package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = (wsPongWait * 9) / 10
	wsMaxMsgSize  = 1 << 12 // 4 KB; clients only send control frames
	wsMinInterval = 250 * time.Millisecond
	wsMaxInterval = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsEnvelope frames every outbound WebSocket message.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsConnect upgrades the connection and streams the session view at the
// client-chosen interval (?interval=2s or ?interval_ms=2000) until the peer
// goes away.
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(wsMaxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Drain incoming frames so pongs are processed and closure is noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := time.NewTicker(wsInterval(c))
	defer push.Stop()
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	// First view goes out immediately; the ticker covers the rest.
	if h.pushView(c, conn) != nil {
		return
	}
	for {
		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-push.C:
			if h.pushView(c, conn) != nil {
				return
			}
		}
	}
}

// pushView writes one session-view frame.
func (h *Handler) pushView(c *gin.Context, conn *websocket.Conn) error {
	view, err := h.services.Monitoring.State(c.Request.Context())
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = conn.WriteJSON(wsEnvelope{Type: "error", Error: errGetState})
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(wsEnvelope{Type: "session", Data: view}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "err", err)
		}
		return err
	}
	return nil
}

// wsInterval resolves the push interval from the query, clamped to
// [250ms, 10s]; defaults to 1s.
func wsInterval(c *gin.Context) time.Duration {
	d := time.Second
	if s := c.Query("interval"); s != "" {
		if v, err := time.ParseDuration(s); err == nil {
			d = v
		}
	} else if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			d = time.Duration(v) * time.Millisecond
		}
	}
	if d < wsMinInterval {
		return wsMinInterval
	}
	if d > wsMaxInterval {
		return wsMaxInterval
	}
	return d
}

// Package ws carries the classroom protocol over websocket connections.
// Each connection owns a read loop handing frames to the dispatcher in
// arrival order and a write loop draining its connection sink.
package ws

import (
	"classroom-lab/contract"
	"classroom-lab/domain/classroom"
	"classroom-lab/protocol"
	"classroom-lab/sink"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Options struct {
	BufferSize     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	// AllowedOrigins lists the accepted Origin hosts. Empty or "*" accepts any origin.
	AllowedOrigins []string
}

type Handler struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	upgrader   websocket.Upgrader
	opts       Options
}

func NewHandler(log *slog.Logger, dispatcher contract.IDispatcher, opts Options) *Handler {
	h := &Handler{log: log, dispatcher: dispatcher, opts: opts}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 || slices.Contains(h.opts.AllowedOrigins, "*") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.Contains(h.opts.AllowedOrigins, u.Host)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade refused", "error", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	connID := classroom.ConnID(uuid.NewString())
	out := sink.NewConnectionSink(h.opts.BufferSize)
	h.dispatcher.Connect(connID, out)

	stop := make(chan struct{})
	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writeLoop(conn, connID, out, stop)
	}()

	h.readLoop(ctx, conn, connID)

	out.Close()
	h.dispatcher.Disconnect(ctx, connID)
	close(stop)
	<-written
	_ = conn.Close()
}

// readLoop returns once the peer is gone or stopped answering pings.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID classroom.ConnID) {
	conn.SetReadLimit(h.opts.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Connection lost", "conn_id", connID, "error", err)
			}
			return
		}
		cmd, err := protocol.Decode(frame)
		if err != nil {
			h.dispatcher.Reject(ctx, connID, err)
			continue
		}
		h.dispatcher.Handle(ctx, connID, cmd)
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, connID classroom.ConnID, out *sink.ConnectionSink, stop <-chan struct{}) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-out.Events():
			frame, err := protocol.Encode(evt)
			if err != nil {
				h.log.Error("Failed to encode event", "conn_id", connID, "event", evt.Name(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Debug("Write failed, closing connection", "conn_id", connID, "error", err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-out.Overflow():
			h.log.Warn("Slow consumer, closing connection", "conn_id", connID)
			h.closeWith(conn, websocket.ClosePolicyViolation, "slow consumer")
			_ = conn.Close()
			return
		case <-stop:
			h.closeWith(conn, websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (h *Handler) closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.opts.WriteTimeout))
}

package transport

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"chat-room/domain"
	"chat-room/errors"
	"chat-room/services"
	"chat-room/wire"
)

// ConnConfig bounds one websocket connection.
type ConnConfig struct {
	ReadLimit    int64
	PongWait     time.Duration
	PingInterval time.Duration
	WriteWait    time.Duration
	SinkBuffer   int
	RateBurst    int
	RateInterval time.Duration
}

func (c *ConnConfig) withDefaults() {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 8 << 10
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 {
		// Must beat the pong deadline or healthy idle clients get dropped.
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.SinkBuffer <= 0 {
		c.SinkBuffer = 64
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 10
	}
	if c.RateInterval <= 0 {
		c.RateInterval = time.Second
	}
}

// Conn drives one websocket connection through its lifecycle: awaiting the
// join frame, joined, closed. The read pump owns inbound frames and the
// lifecycle; the write pump owns every write to the socket, so broadcasts
// and unicast errors never interleave mid-frame.
type Conn struct {
	ws      *websocket.Conn
	log     *slog.Logger
	service services.IRoomService
	cfg     ConnConfig

	sink    *WsSink
	limiter *rateLimiter

	// control carries unicast frames (errors) from the read pump to the
	// write pump.
	control chan wire.Frame

	identity domain.Identity
	joined   bool
}

func NewConn(ws *websocket.Conn, log *slog.Logger, service services.IRoomService, cfg ConnConfig) *Conn {
	cfg.withDefaults()
	return &Conn{
		ws:      ws,
		log:     log.With("remote", ws.RemoteAddr().String()),
		service: service,
		cfg:     cfg,
		sink:    NewWsSink(cfg.SinkBuffer),
		limiter: newRateLimiter(cfg.RateBurst, cfg.RateInterval),
		control: make(chan wire.Frame, 8),
	}
}

// Serve runs both pumps and blocks until the connection is torn down.
func (c *Conn) Serve(ctx context.Context) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
		// Nothing can be written anymore, so the connection is over even
		// if the peer never closes its side. Expire the read deadline so
		// the read pump does not linger until the pong deadline.
		_ = c.ws.SetReadDeadline(time.Now())
	}()

	c.readPump(ctx)

	// Leaving closes the sink via the serializer; closing it here as well
	// covers connections that never joined.
	if c.joined {
		if err := c.service.Leave(c.identity); err != nil {
			c.log.Warn("Failed to schedule leave", "identity", c.identity, "error", err)
		}
	}
	_ = c.sink.Close()
	<-writerDone
	_ = c.ws.Close()
}

func (c *Conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(c.cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.logReadEnd(err)
			return
		}

		frame, err := wire.ParseClient(raw)
		if err != nil {
			c.log.Debug("Invalid frame discarded", "error", err)
			c.unicast(wire.ErrorFrame(wire.ReasonInvalidFrame, "malformed frame"))
			continue
		}

		if !c.handleFrame(ctx, frame) {
			return
		}
	}
}

// handleFrame applies one inbound frame to the connection state machine.
// It returns false when the connection must close.
func (c *Conn) handleFrame(ctx context.Context, frame wire.ClientFrame) bool {
	switch {
	case frame.Type == wire.TypeJoin && !c.joined:
		return c.handleJoin(ctx, frame.Username)

	case frame.Type == wire.TypeJoin:
		// Already joined; a second join is a protocol violation but not
		// worth killing the connection over.
		c.unicast(wire.ErrorFrame(wire.ReasonInvalidFrame, "already joined"))
		return true

	case !c.joined:
		// Chat before join: the room never sees it.
		c.unicast(wire.ErrorFrame(wire.ReasonInvalidFrame, "join first"))
		return true

	default:
		return c.handleChat(frame.Content)
	}
}

func (c *Conn) handleJoin(ctx context.Context, username string) bool {
	id := domain.NormalizeIdentity(username)
	err := c.service.Join(ctx, id, c.sink)
	switch {
	case err == nil:
		c.identity = id
		c.joined = true
		c.log.Info("Connection joined", "identity", id)
		return true
	case stderrors.Is(err, errors.ErrDuplicateIdentity):
		c.unicast(wire.ErrorFrame(wire.ReasonDuplicateUsername, "username already taken"))
		return false
	case stderrors.Is(err, errors.ErrQueueFull):
		// Only the command was dropped; the connection stays in
		// AwaitingJoin and may retry once the room drains.
		c.unicast(wire.ErrorFrame(wire.ReasonQueueFull, "room is overloaded"))
		return true
	default:
		c.log.Warn("Join failed", "identity", id, "error", err)
		c.unicast(wire.ErrorFrame(wire.ReasonInvalidFrame, "join rejected"))
		return false
	}
}

func (c *Conn) handleChat(content string) bool {
	if !c.limiter.allow() {
		c.log.Debug("Rate limit exceeded, discarding message", "identity", c.identity)
		c.unicast(wire.ErrorFrame(wire.ReasonRateLimited, "slow down"))
		return true
	}

	if err := c.service.Post(c.identity, content, time.Now().UTC()); err != nil {
		if stderrors.Is(err, errors.ErrQueueFull) {
			// Dropped command, surviving connection: overflow on the
			// shared queue must never evict the sender.
			c.unicast(wire.ErrorFrame(wire.ReasonQueueFull, "room is overloaded"))
			return true
		}
		c.log.Warn("Failed to post message", "identity", c.identity, "error", err)
	}
	return true
}

func (c *Conn) logReadEnd(err error) {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) {
		c.log.Debug("Connection closed", "error", err)
		return
	}
	if stderrors.Is(err, websocket.ErrReadLimit) {
		c.log.Warn("Frame exceeded read limit")
		return
	}
	c.log.Debug("Read loop ended", "error", err)
}

// unicast hands a frame to the write pump without ever blocking the read
// pump; a connection too broken to accept its own error frame is closing
// anyway.
func (c *Conn) unicast(f wire.Frame) {
	select {
	case c.control <- f:
	default:
		c.log.Debug("Control frame dropped")
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-c.sink.Events():
			if !ok {
				// Sink closed: the serializer removed us or the read
				// pump is tearing down.
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			frame, mapped := wire.FromEvent(evt)
			if !mapped {
				continue
			}
			if !c.writeFrame(frame) {
				return
			}
		case frame := <-c.control:
			if !c.writeFrame(frame) {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}

func (c *Conn) writeFrame(f wire.Frame) bool {
	data, err := wire.Encode(f)
	if err != nil {
		c.log.Error("Failed to encode frame", "type", f.Type, "error", err)
		return true
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		c.log.Debug("Write failed", "error", err)
		return false
	}
	return true
}

func (c *Conn) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

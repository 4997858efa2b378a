package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-room/domain"
	"chat-room/errors"
	"chat-room/services"
	"chat-room/wire"
)

// scriptedRoomService replays canned verdicts so connection behavior can be
// exercised without a running serializer. Accepted commands are published on
// the channels.
type scriptedRoomService struct {
	joinErrs []error
	postErrs []error

	sinks chan domain.EventSink
	posts chan string
}

func newScriptedRoomService(joinErrs, postErrs []error) *scriptedRoomService {
	return &scriptedRoomService{
		joinErrs: joinErrs,
		postErrs: postErrs,
		sinks:    make(chan domain.EventSink, 4),
		posts:    make(chan string, 16),
	}
}

func (s *scriptedRoomService) Join(_ context.Context, _ domain.Identity, sink domain.EventSink) error {
	err := pop(&s.joinErrs)
	if err == nil {
		s.sinks <- sink
	}
	return err
}

func (s *scriptedRoomService) Leave(domain.Identity) error { return nil }

func (s *scriptedRoomService) Post(_ domain.Identity, content string, _ time.Time) error {
	err := pop(&s.postErrs)
	if err == nil {
		s.posts <- content
	}
	return err
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// serveOneConn upgrades a single websocket connection and drives it through
// Serve; the returned channel closes when Serve returns.
func serveOneConn(t *testing.T, service services.IRoomService, cfg ConnConfig) (*websocket.Conn, <-chan struct{}) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer close(done)
		NewConn(ws, log, service, cfg).Serve(r.Context())
	}))
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, done
}

func awaitPost(t *testing.T, service *scriptedRoomService) string {
	t.Helper()
	select {
	case content := <-service.posts:
		return content
	case <-time.After(2 * time.Second):
		t.Fatal("Post never reached the room")
		return ""
	}
}

func TestConn_ChatQueueOverflowKeepsConnection(t *testing.T) {
	req := require.New(t)
	service := newScriptedRoomService(nil, []error{errors.ErrQueueFull})
	conn, done := serveOneConn(t, service, ConnConfig{RateBurst: 100})

	sendFrame(t, conn, wire.Frame{Type: wire.TypeJoin, Username: "alice"})

	// When a chat command lands on a full queue
	sendFrame(t, conn, wire.Frame{Type: wire.TypeChat, Content: "first"})

	// Then the sender gets a transient error, nothing more
	errFrame := waitFrame(t, conn, wire.TypeError)
	req.Equal(wire.ReasonQueueFull, errFrame.Reason)

	// And the connection survives to retry
	sendFrame(t, conn, wire.Frame{Type: wire.TypeChat, Content: "second"})
	req.Equal("second", awaitPost(t, service))

	select {
	case <-done:
		t.Fatal("Connection closed after a transient overflow")
	default:
	}
}

func TestConn_JoinQueueOverflowAllowsRetry(t *testing.T) {
	req := require.New(t)
	service := newScriptedRoomService([]error{errors.ErrQueueFull}, nil)
	conn, done := serveOneConn(t, service, ConnConfig{RateBurst: 100})

	// When the join command lands on a full queue
	sendFrame(t, conn, wire.Frame{Type: wire.TypeJoin, Username: "alice"})
	errFrame := waitFrame(t, conn, wire.TypeError)
	req.Equal(wire.ReasonQueueFull, errFrame.Reason)

	// Then the same connection may retry and end up joined
	sendFrame(t, conn, wire.Frame{Type: wire.TypeJoin, Username: "alice"})
	sendFrame(t, conn, wire.Frame{Type: wire.TypeChat, Content: "made it"})
	req.Equal("made it", awaitPost(t, service))

	select {
	case <-done:
		t.Fatal("Connection closed after a transient overflow")
	default:
	}
}

func TestConn_SinkCloseUnblocksIdleReader(t *testing.T) {
	req := require.New(t)
	service := newScriptedRoomService(nil, nil)
	conn, done := serveOneConn(t, service, ConnConfig{PongWait: time.Minute})

	sendFrame(t, conn, wire.Frame{Type: wire.TypeJoin, Username: "alice"})

	var sink domain.EventSink
	select {
	case sink = <-service.sinks:
	case <-time.After(2 * time.Second):
		t.Fatal("Join never reached the room")
	}

	// When the serializer closes the sink while the peer stays silent
	req.NoError(sink.Close())

	// Then teardown completes without waiting out the pong deadline
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Teardown waited on the read deadline")
	}
}

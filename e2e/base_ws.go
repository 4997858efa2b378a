package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-room/wire"
)

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set, skipping end to end tests")
	}
}

// Dial opens one websocket connection with a colorized header in the logs.
func (s *BaseWsSuite) Dial(name string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	u := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to server at "+s.Config.ServerAddr)
	return conn
}

// Join sends the join frame for the given username.
func (s *BaseWsSuite) Join(conn *websocket.Conn, username string) {
	data, err := wire.Encode(wire.Frame{Type: wire.TypeJoin, Username: username})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// Send posts one chat frame.
func (s *BaseWsSuite) Send(conn *websocket.Conn, content string) {
	data, err := wire.Encode(wire.Frame{Type: wire.TypeChat, Content: content})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// NextFrame reads the next frame within the deadline.
func (s *BaseWsSuite) NextFrame(conn *websocket.Conn, timeout time.Duration) wire.Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(timeout)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err, "No frame received within %s", timeout)

	var frame wire.Frame
	s.Require().NoError(json.Unmarshal(data, &frame))
	s.T().Logf("Received %s frame: %s", frame.Type, string(data))
	return frame
}

// WaitFor reads frames until one of the wanted type arrives, failing after
// the deadline. Interleaved frames of other types are logged and skipped.
func (s *BaseWsSuite) WaitFor(conn *websocket.Conn, frameType string, timeout time.Duration) wire.Frame {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		s.Require().Positive(remaining, "Frame of type %q never arrived", frameType)

		frame := s.NextFrame(conn, remaining)
		if frame.Type == frameType {
			return frame
		}
	}
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"chat-room/domain"
	"chat-room/projection"
	"chat-room/wire"
)

// Terminal chat client: joins the room, folds the live feed into a local
// timeline, and sends whatever is typed on stdin.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	username := flag.String("username", "", "identity to join with")
	flag.Parse()

	self := domain.NormalizeIdentity(*username)
	if self.IsEmpty() {
		return fmt.Errorf("username is required")
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	join, err := wire.Encode(wire.Frame{Type: wire.TypeJoin, Username: self.String()})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	// The timeline is the client's only state: every render reads from it.
	timeline := projection.NewTimeline()

	done := make(chan error, 1)
	go func() {
		done <- readLoop(conn, self, timeline)
	}()

	go writeLoop(conn)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-sigs:
		color.Gray.Printf("Leaving after %d messages...\n", len(timeline.Messages()))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return nil
	}
}

func readLoop(conn *websocket.Conn, self domain.Identity, timeline *projection.Timeline) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var frame wire.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			color.Gray.Printf("Unreadable frame: %v\n", err)
			continue
		}

		if evt, ok := wire.ToEvent(frame); ok {
			_ = timeline.Consume(context.Background(), evt)
		}
		render(frame, self, timeline)
	}
}

func render(frame wire.Frame, self domain.Identity, timeline *projection.Timeline) {
	switch frame.Type {
	case wire.TypeChat:
		messages := timeline.Messages()
		if len(messages) == 0 {
			return
		}
		msg := messages[len(messages)-1]
		stamp := msg.CreatedAt.Local().Format("15:04:05")
		if msg.Sender == self {
			color.Cyan.Printf("[%s] you: %s\n", stamp, msg.Content)
		} else {
			color.Green.Printf("[%s] %s: %s\n", stamp, msg.Sender, msg.Content)
		}
	case wire.TypeSystem:
		color.Yellow.Printf("* %s\n", frame.Content)
	case wire.TypeUsers:
		online := lo.Map(timeline.Users(), func(id domain.Identity, _ int) string {
			return id.String()
		})
		color.Magenta.Printf("online: %s\n", strings.Join(online, ", "))
	case wire.TypeError:
		color.Red.Printf("error (%s): %s\n", frame.Reason, frame.Content)
	default:
		color.Gray.Printf("%+v\n", frame)
	}
}

func writeLoop(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		content := strings.TrimSpace(scanner.Text())
		if content == "" {
			continue
		}
		data, err := wire.Encode(wire.Frame{Type: wire.TypeChat, Content: content})
		if err != nil {
			color.Red.Printf("Encoding failed: %v\n", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			color.Red.Printf("Send failed: %v\n", err)
			return
		}
	}
}

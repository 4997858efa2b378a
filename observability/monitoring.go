package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// RoomStats aggregates the room metrics exposed over the stats endpoint.
type RoomStats struct {
	RoomSize         int    `json:"room_size"`
	Joins            uint64 `json:"joins"`
	Leaves           uint64 `json:"leaves"`
	MessagesPosted   uint64 `json:"messages_posted"`
	MessagesCensored uint64 `json:"messages_censored"`
	CommandsDropped  uint64 `json:"commands_dropped"`
	DeliveryFailures uint64 `json:"delivery_failures"`
	StartedAt        string `json:"started_at"`
}

// Counters collects room telemetry. Increments are atomic so producers never
// contend; Snapshot assembles a consistent-enough view for the HTTP surface.
type Counters struct {
	mu       sync.RWMutex
	roomSize int

	joins            uint64
	leaves           uint64
	messagesPosted   uint64
	messagesCensored uint64
	commandsDropped  uint64
	deliveryFailures uint64
	startedAt        time.Time
}

func NewCounters() *Counters {
	return &Counters{startedAt: time.Now().UTC()}
}

func (c *Counters) IncrJoins() {
	atomic.AddUint64(&c.joins, 1)
}

func (c *Counters) IncrLeaves() {
	atomic.AddUint64(&c.leaves, 1)
}

func (c *Counters) IncrMessagesPosted() {
	atomic.AddUint64(&c.messagesPosted, 1)
}

func (c *Counters) IncrMessagesCensored() {
	atomic.AddUint64(&c.messagesCensored, 1)
}

func (c *Counters) IncrCommandsDropped() {
	atomic.AddUint64(&c.commandsDropped, 1)
}

func (c *Counters) IncrDeliveryFailures() {
	atomic.AddUint64(&c.deliveryFailures, 1)
}

func (c *Counters) SetRoomSize(n int) {
	c.mu.Lock()
	c.roomSize = n
	c.mu.Unlock()
}

func (c *Counters) Snapshot() RoomStats {
	c.mu.RLock()
	size := c.roomSize
	c.mu.RUnlock()

	return RoomStats{
		RoomSize:         size,
		Joins:            atomic.LoadUint64(&c.joins),
		Leaves:           atomic.LoadUint64(&c.leaves),
		MessagesPosted:   atomic.LoadUint64(&c.messagesPosted),
		MessagesCensored: atomic.LoadUint64(&c.messagesCensored),
		CommandsDropped:  atomic.LoadUint64(&c.commandsDropped),
		DeliveryFailures: atomic.LoadUint64(&c.deliveryFailures),
		StartedAt:        c.startedAt.Format(time.RFC3339),
	}
}

package event

import "time"

type Type string

const (
	MessagePostedType   Type = "MESSAGE_POSTED"
	MessageCensoredType Type = "MESSAGE_CENSORED"
	ParticipantType     Type = "PARTICIPANT_CHANGE"
	CommandDroppedType  Type = "COMMAND_DROPPED"
	DeliveryFailedType  Type = "DELIVERY_FAILED"
	ChannelCapacityType Type = "CHANNEL_CAPACITY"
	ProcStatsType       Type = "PROC_STATS"
)

// Event is the telemetry envelope. Telemetry is best effort: producers drop
// it when the channel is full rather than slow the room down.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcStats struct {
	PID      int
	Status   string
	Cpu      float64
	RamBytes uint64
}

// ParticipantChange reports a membership delta for counters.
type ParticipantChange struct {
	Joined bool
	Size   int
}

type CommandDropped struct {
	Command string
}

type DeliveryFailed struct {
	Identity string
}

type MessageCensored struct {
	Author string
	Lang   string
	Words  []string
}

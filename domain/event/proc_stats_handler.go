package event

import (
	"fmt"
	"log/slog"

	"chat-room/errors"
)

// ProcStatsHandler logs the coordinator's own process metrics.
// Useful to spot runaway CPU or memory before the room degrades.
type ProcStatsHandler struct {
	log            *slog.Logger
	cpuWarnPercent float64
}

func NewProcStatsHandler(log *slog.Logger, cpuWarnPercent float64) *ProcStatsHandler {
	return &ProcStatsHandler{log: log, cpuWarnPercent: cpuWarnPercent}
}

func (h ProcStatsHandler) Handle(event Event) {
	switch event.Type {
	case ProcStatsType:
		payload, ok := event.Payload.(ProcStats)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Debug(fmt.Sprintf("Process %d [%s] cpu=%.1f%% ram=%d bytes",
			payload.PID, payload.Status, payload.Cpu, payload.RamBytes))
		if h.cpuWarnPercent > 0 && payload.Cpu >= h.cpuWarnPercent {
			h.log.Warn("Coordinator process CPU above threshold",
				"cpu", payload.Cpu, "threshold", h.cpuWarnPercent)
		}
	}
}

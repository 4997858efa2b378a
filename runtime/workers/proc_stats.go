package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-room/domain/event"
)

// ProcStatsWorker samples the coordinator's own process health (CPU, RSS,
// OS status) on a fixed interval and feeds it to the telemetry pipeline.
type ProcStatsWorker struct {
	log            *slog.Logger
	telemetryChan  chan event.Event
	metricInterval time.Duration
}

func NewProcStatsWorker(log *slog.Logger,
	telemetryChan chan event.Event,
	metricInterval time.Duration) *ProcStatsWorker {
	return &ProcStatsWorker{
		log:            log,
		telemetryChan:  telemetryChan,
		metricInterval: metricInterval,
	}
}

func (w *ProcStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process sampling")
			return nil
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.telemetryChan <- event.Event{
				Type:      event.ProcStatsType,
				CreatedAt: time.Now().UTC(),
				Payload: event.ProcStats{
					PID:      os.Getpid(),
					Status:   status,
					Cpu:      cpu,
					RamBytes: rss,
				},
			}:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}

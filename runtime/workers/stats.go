package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-relay/observability"
	"chat-relay/runtime"
)

// StatsWorker samples the relay's own process and publishes the numbers
// as gauges. Collection failures are logged and skipped; the relay never
// degrades because its own bookkeeping hiccuped.
type StatsWorker struct {
	log      *slog.Logger
	registry *runtime.Registry
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, registry *runtime.Registry, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, registry: registry, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Warn("Failed to collect self stats", "error", err)
				continue
			}

			observability.ProcessMemoryBytes.Set(float64(rss))
			observability.ProcessCPUPercent.Set(cpu)

			w.log.Debug("Relay stats",
				"rooms", w.registry.Rooms(),
				"ram_bytes", rss,
				"cpu_percent", cpu)
		}
	}
}

// selfStats retrieves memory and CPU figures for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

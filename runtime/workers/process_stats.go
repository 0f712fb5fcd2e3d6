package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker periodically logs the server's own CPU and memory
// usage, so a long-running instance leaves a resource trail in the logs.
type ProcessStatsWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewProcessStatsWorker(log *slog.Logger, interval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, interval: interval}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping process stats worker")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Warn("Failed to read CPU usage", "error", err)
				continue
			}
			var rss uint64
			if mem, err := p.MemoryInfo(); err == nil && mem != nil {
				rss = mem.RSS
			}

			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			w.log.Info("process stats",
				"cpu_percent", cpu,
				"rss_mb", rss/1024/1024,
				"heap_alloc_mb", m.Alloc/1024/1024,
				"goroutines", runtime.NumGoroutine(),
				"num_gc", m.NumGC)
		}
	}
}

package workers

import (
	"classroom-lab/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples the cpu and memory usage of the server process.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	metrics        *observability.Metrics
	metricInterval time.Duration
	pid            int32
}

func NewHealthMonitoringWorker(log *slog.Logger, metrics *observability.Metrics, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		metrics:        metrics,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.Sample(p)
		}
	}
}

// Sample reads the current usage of p. Failures are logged and skipped.
func (w *HealthMonitoringWorker) Sample(p *process.Process) {
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Error("Error while finding process cpu usage", "err", err)
		return
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		w.log.Error("Error while finding process ram usage", "err", err)
		return
	}
	w.metrics.SetProcess(cpu, mem.RSS)
}

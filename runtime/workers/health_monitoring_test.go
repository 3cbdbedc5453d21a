package workers

import (
	"classroom-lab/observability"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

func rssGauge(t *testing.T, registry *prometheus.Registry) float64 {
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "classroom_process_rss_bytes" {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestHealthMonitoringWorker_Sample(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := prometheus.NewRegistry()
	worker := NewHealthMonitoringWorker(log, observability.NewMetrics(registry), time.Second)
	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	// When the current process is sampled
	worker.Sample(p)

	// Then its resident memory is exported
	req.Greater(rssGauge(t, registry), 0.0)
}

func TestHealthMonitoringWorker_Run_Until_Cancelled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := prometheus.NewRegistry()
	worker := NewHealthMonitoringWorker(log, observability.NewMetrics(registry), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then a few ticks later the gauge is filled
	req.Eventually(func() bool { return rssGauge(t, registry) > 0 }, 2*time.Second, 10*time.Millisecond)

	// And the worker returns cleanly on cancellation
	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker did not stop")
	}
}

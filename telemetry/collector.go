package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsProvider is implemented by storage backends that can report their size
type StatsProvider interface {
	Name() string
	Stats() (files int, bytes int64, err error)
}

// MetricsCollector periodically collects storage stats and updates gauges
type MetricsCollector struct {
	providers []StatsProvider
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(interval time.Duration, providers ...StatsProvider) *MetricsCollector {
	return &MetricsCollector{
		providers: providers,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic collection
func (mc *MetricsCollector) Start() {
	mc.wg.Add(1)
	go mc.collectLoop()
}

// Stop stops the collector
func (mc *MetricsCollector) Stop() {
	close(mc.stopCh)
	mc.wg.Wait()
}

func (mc *MetricsCollector) collectLoop() {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.interval)
	defer ticker.Stop()

	mc.Collect()

	for {
		select {
		case <-ticker.C:
			mc.Collect()
		case <-mc.stopCh:
			return
		}
	}
}

// Collect updates the storage gauges once
func (mc *MetricsCollector) Collect() {
	for _, p := range mc.providers {
		files, bytes, err := p.Stats()
		if err != nil {
			log.Debug().Err(err).Str("backend", p.Name()).Msg("Failed to collect storage stats")
			continue
		}
		StoredFiles.With(p.Name()).Set(float64(files))
		StoredBytes.With(p.Name()).Set(float64(bytes))
	}
}

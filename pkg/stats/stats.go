// Package stats periodically logs runtime statistics of the daemon and dumps
// the prometheus metrics gathered so far when stopped.
package stats

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
)

const dumpFile = "metrics"

// EnableMemoryStatistics starts a go routine that periodically logs memory
// usage and number of go routines of the process. When the context is done,
// the metrics of the default prometheus gatherer are appended to a file in
// dumpDir, if not empty.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpDir string,
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if len(dumpDir) <= 0 {
					return
				}
				if err := DumpPrometheusMetrics(
					prometheus.DefaultGatherer, filepath.Join(dumpDir, dumpFile),
				); err != nil {
					log.WithError(err).Warn("failed to dump metrics")
				}
				return
			}
		}
	}()
}

func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / MEGABYTE
}

// PrintMemoryStatistics logs memory statistics read from the go runtime.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithFields(log.Fields{
		"total_alloc_mb": toMegabytes(memStats.TotalAlloc),
		"heap_alloc_mb":  toMegabytes(memStats.HeapAlloc),
		"mallocs":        memStats.Mallocs,
		"frees":          memStats.Frees,
	}).Info("memory statistics")
}

// DumpPrometheusMetrics appends the metrics of the given gatherer to the
// file at path.
func DumpPrometheusMetrics(gatherer prometheus.Gatherer, path string) error {
	metricFamilies, err := gatherer.Gather()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, mf := range metricFamilies {
		if _, err := writer.WriteString(mf.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// PrintNumOfRoutines logs the number of go routines currently running.
func PrintNumOfRoutines() {
	log.Infof("num of go routines: %d", runtime.NumGoroutine())
}

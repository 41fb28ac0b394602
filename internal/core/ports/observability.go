package ports

import (
	"time"
)

type MetricsPort interface {
	IncrementCounter(name string, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
	// RecordRequest records one HTTP exchange that began at start.
	RecordRequest(method, path string, status int, start time.Time)
}

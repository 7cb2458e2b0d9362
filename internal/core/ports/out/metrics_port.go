package out

import "time"

type MetricsPort interface {
	ObserveOperation(operation string, err error)
	ObserveResync(duration time.Duration)
	ObserveCache(hit bool)
	ObserveMergeAnomaly(kind string)
}

package domain

import "time"

type ResourceKind string

const (
	KindCompute       ResourceKind = "compute"
	KindBlockStorage  ResourceKind = "block-storage"
	KindDatabase      ResourceKind = "database"
	KindObjectStorage ResourceKind = "object-storage"
)

// ResourceRecord is an immutable snapshot of one provider resource at sample
// time. Attributes carry provider-specific fields (instance size, engine,
// bucket size) that have no normalized column.
type ResourceRecord struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       ResourceKind      `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type MetricPoint struct {
	Timestamp time.Time
	Value     float64
}

// MetricSample is an ordered series of datapoints for one metric over one
// window. An empty sample is not an error; it means the provider returned no
// data and the resource must be skipped, not defaulted to zero.
type MetricSample []MetricPoint

func (s MetricSample) Empty() bool {
	return len(s) == 0
}

// Mean is the unweighted arithmetic mean of all values. Callers must check
// Empty first.
func (s MetricSample) Mean() float64 {
	var sum float64
	for _, p := range s {
		sum += p.Value
	}
	return sum / float64(len(s))
}

package optimizer

import "github.com/de-tools/cloud-optimizer/pkg/models/domain"

// Classifier reduces a metric sample to its mean and compares it against a
// static threshold. The verdict is a pure function of the sample; no
// cross-resource or cross-run state is involved.
type Classifier struct {
	ThresholdPercent float64
}

func NewClassifier(thresholdPercent float64) Classifier {
	return Classifier{ThresholdPercent: thresholdPercent}
}

// Classify returns the sample mean and whether it falls below the threshold.
// ok is false for an empty sample: no verdict exists then, which is distinct
// from "not underutilized" and must not produce a finding.
func (c Classifier) Classify(sample domain.MetricSample) (mean float64, underutilized bool, ok bool) {
	if sample.Empty() {
		return 0, false, false
	}
	mean = sample.Mean()
	return mean, mean < c.ThresholdPercent, true
}

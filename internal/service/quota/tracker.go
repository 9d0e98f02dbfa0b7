package quota

import (
	"fmt"

	"go.uber.org/zap"
)

// Operation costs in quota units, per the Data API v3 quota table.
const (
	SearchListCost = 100
	VideosListCost = 1
)

// Tracker keeps in-process quota accounting for a single run. The report
// workflow is strictly sequential, so the tracker is not safe for concurrent
// use and does not need to be.
type Tracker struct {
	log              *zap.Logger
	dailyLimit       int
	thresholdPercent int // Stop issuing calls when this % of quota is used
	used             int
	operations       int
}

// NewTracker creates a quota tracker. Zero or out-of-range arguments fall
// back to the Data API defaults (10000 units/day, stop at 90%).
func NewTracker(dailyLimit, thresholdPercent int, log *zap.Logger) *Tracker {
	if dailyLimit <= 0 {
		dailyLimit = 10000 // YouTube API v3 default
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = 90
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Tracker{
		log:              log,
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
	}
}

// Check returns an error when recording cost more units would cross the
// threshold. Callers invoke it before every API call.
func (t *Tracker) Check(cost int) error {
	threshold := (t.dailyLimit * t.thresholdPercent) / 100

	if t.used >= threshold {
		return fmt.Errorf("quota threshold reached: %d/%d units used", t.used, t.dailyLimit)
	}
	if t.used+cost > threshold {
		return fmt.Errorf("not enough quota for operation: need %d, %d remaining before threshold %d",
			cost, threshold-t.used, threshold)
	}
	return nil
}

// Record accounts for a completed API call.
func (t *Tracker) Record(cost int, operation string) {
	t.used += cost
	t.operations++

	percentage := float64(t.used) / float64(t.dailyLimit) * 100
	t.log.Debug("quota usage recorded",
		zap.String("operation", operation),
		zap.Int("cost", cost),
		zap.Int("used", t.used),
		zap.Int("limit", t.dailyLimit),
		zap.Float64("percent", percentage),
	)
}

// Used returns the units consumed so far.
func (t *Tracker) Used() int {
	return t.used
}

// Operations returns the number of API calls recorded so far.
func (t *Tracker) Operations() int {
	return t.operations
}

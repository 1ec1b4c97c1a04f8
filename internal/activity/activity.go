// Package activity credits active practice time from activity timestamps.
package activity

import "time"

const (
	EarlyGradeThreshold    = 120
	DefaultThreshold       = 240
	AdvancedGradeThreshold = 360
)

// ThresholdForGrade 按年级返回不活跃阈值（秒）
func ThresholdForGrade(grade *int) int {
	if grade == nil {
		return DefaultThreshold
	}
	switch g := *grade; {
	case g <= 2:
		return EarlyGradeThreshold
	case g <= 8:
		return DefaultThreshold
	default:
		return AdvancedGradeThreshold
	}
}

// Credit returns the new active total and the new last-activity timestamp.
// A single gap never credits more than threshold seconds; a non-positive gap
// credits nothing.
func Credit(last, now time.Time, thresholdSec, activeSec int) (int, time.Time) {
	elapsed := int(now.Sub(last) / time.Second)
	if elapsed <= 0 {
		return activeSec, now
	}
	if thresholdSec > 0 && elapsed > thresholdSec {
		elapsed = thresholdSec
	}
	return activeSec + elapsed, now
}

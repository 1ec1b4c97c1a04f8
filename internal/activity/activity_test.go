package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func grade(g int) *int { return &g }

func TestThresholdForGrade(t *testing.T) {
	tests := []struct {
		name  string
		grade *int
		want  int
	}{
		{"unknown", nil, 240},
		{"grade 1", grade(1), 120},
		{"grade 2", grade(2), 120},
		{"grade 3", grade(3), 240},
		{"grade 8", grade(8), 240},
		{"grade 9", grade(9), 360},
		{"grade 11", grade(11), 360},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThresholdForGrade(tt.grade))
		})
	}
}

func TestCredit(t *testing.T) {
	base := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		want    int
		wantNow time.Time
	}{
		{"short gap fully credited", base.Add(45 * time.Second), 145, base.Add(45 * time.Second)},
		{"exactly threshold", base.Add(240 * time.Second), 340, base.Add(240 * time.Second)},
		{"long idle capped", base.Add(2 * time.Hour), 340, base.Add(2 * time.Hour)},
		{"clock went backwards", base.Add(-10 * time.Second), 100, base.Add(-10 * time.Second)},
		{"no gap", base, 100, base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active, last := Credit(base, tt.now, 240, 100)
			assert.Equal(t, tt.want, active)
			assert.True(t, tt.wantNow.Equal(last))
		})
	}
}

package model

import (
	"math"
	"time"
)

// swagger:model ProgressSnapshot
type ProgressSnapshot struct {
	LearnerID uint `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"learnerId"`
	SkillID   uint `gorm:"primaryKey;autoIncrement:false;type:bigint unsigned" json:"skillId"`

	BestSmartScore  int        `gorm:"default:0" json:"bestSmartScore"`
	LastSmartScore  int        `gorm:"default:0" json:"lastSmartScore"`
	LastPracticedAt *time.Time `json:"lastPracticedAt,omitempty"`
	TotalQuestions  int        `gorm:"default:0" json:"totalQuestions"`
	AccuracyPercent int        `gorm:"default:0" json:"accuracyPercent"`

	BestSmartScoreAllTime  int `gorm:"default:0" json:"bestSmartScoreAllTime"`
	QuestionsAnsweredTotal int `gorm:"default:0" json:"questionsAnsweredAllTime"`
	TimeSecondsTotal       int `gorm:"default:0" json:"timeSecondsAllTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProgressSnapshot) TableName() string {
	return "progress_snapshots"
}

// Record folds one answered question into the aggregate.
// Accuracy is kept as a rounded percentage, so the running correct count is
// re-estimated from it on every call.
func (p *ProgressSnapshot) Record(score int, correct bool, timeSpentSec int, at time.Time) {
	p.LastPracticedAt = &at
	p.LastSmartScore = score
	if score > p.BestSmartScore {
		p.BestSmartScore = score
	}
	if score > p.BestSmartScoreAllTime {
		p.BestSmartScoreAllTime = score
	}
	p.QuestionsAnsweredTotal++
	if timeSpentSec > 0 {
		p.TimeSecondsTotal += timeSpentSec
	}

	prevTotal := p.TotalQuestions
	p.TotalQuestions = prevTotal + 1
	correctEst := int(math.Round(float64(prevTotal) * float64(p.AccuracyPercent) / 100))
	if correct {
		correctEst++
	}
	p.AccuracyPercent = int(math.Round(float64(correctEst) / float64(p.TotalQuestions) * 100))
}

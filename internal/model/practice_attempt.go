package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionSnapshot 作答时题目内容的快照，题库后续修改不影响回顾
type QuestionSnapshot struct {
	QuestionID    *uint          `json:"questionId,omitempty"`
	Ref           string         `json:"ref"`
	Type          QuestionType   `json:"type"`
	Prompt        string         `json:"prompt"`
	Data          map[string]any `json:"data"`
	CorrectAnswer map[string]any `json:"correctAnswer"`
	Explanation   string         `json:"explanation,omitempty"`
	Level         int            `json:"level"`
}

// swagger:model PracticeAttempt
type PracticeAttempt struct {
	UUIDBase

	SessionID   string `gorm:"size:36;not null;uniqueIndex:uq_attempt_session_ref" json:"sessionId"`
	QuestionRef string `gorm:"size:64;not null;uniqueIndex:uq_attempt_session_ref" json:"questionRef"`
	LearnerID   uint   `gorm:"index;type:bigint unsigned;not null" json:"learnerId"`
	SkillID     uint   `gorm:"index;type:bigint unsigned;not null" json:"skillId"`
	QuestionID  *uint  `gorm:"index;type:bigint unsigned" json:"questionId,omitempty"` // nil for generated questions
	Level       int    `gorm:"default:1" json:"level"`

	Question        datatypes.JSONType[QuestionSnapshot] `gorm:"type:json" json:"question"`
	SubmittedAnswer datatypes.JSONMap                    `gorm:"type:json" json:"submittedAnswer"`
	IsCorrect       bool                                 `json:"isCorrect"`

	ScoreBefore int          `json:"scoreBefore"`
	ScoreAfter  int          `json:"scoreAfter"`
	ZoneBefore  PracticeZone `gorm:"size:20" json:"zoneBefore"`
	ZoneAfter   PracticeZone `gorm:"size:20" json:"zoneAfter"`
	Delta       int          `json:"delta"`

	TimeSpentSec int       `gorm:"default:0" json:"timeSpentSec"`
	AnsweredAt   time.Time `json:"answeredAt"`
}

func (PracticeAttempt) TableName() string {
	return "practice_attempts"
}

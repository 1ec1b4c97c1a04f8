package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

const rollingWindowSize = 20

// RollingWindow 最近作答的正确率窗口
type RollingWindow struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Record adds one outcome. Once the window is saturated the correct count
// decays so older answers weigh less.
func (w *RollingWindow) Record(correct bool) {
	if w.Total < rollingWindowSize {
		w.Total++
	}
	if correct {
		w.Correct++
	}
	if w.Total == rollingWindowSize {
		w.Correct = int(math.Round(float64(w.Correct) * 0.95))
	}
	if w.Correct > w.Total {
		w.Correct = w.Total
	}
}

func (w RollingWindow) Accuracy() float64 {
	if w.Total <= 0 {
		return 1
	}
	return float64(w.Correct) / float64(w.Total)
}

// GeneratedQuestion 生成器产出的题目，仅保存在会话状态中
type GeneratedQuestion struct {
	Type          QuestionType   `json:"type"`
	Prompt        string         `json:"prompt"`
	Data          map[string]any `json:"data"`
	CorrectAnswer map[string]any `json:"correctAnswer"`
	Explanation   string         `json:"explanation,omitempty"`
	Level         int            `json:"level"`
}

// SessionState is the per-session internal record.
type SessionState struct {
	Recent             RecentQuestions              `json:"recentQuestionIds"`
	Window             RollingWindow                `json:"recentWindow"`
	EnteredChallengeAt *time.Time                   `json:"enteredChallengeAt,omitempty"`
	GeneratedSeq       int                          `json:"generatedSeq,omitempty"`
	Generated          map[string]GeneratedQuestion `json:"generated,omitempty"`
}

// Clone returns a copy that shares no mutable containers with s.
func (s SessionState) Clone() SessionState {
	out := s
	if s.EnteredChallengeAt != nil {
		t := *s.EnteredChallengeAt
		out.EnteredChallengeAt = &t
	}
	if s.Generated != nil {
		out.Generated = make(map[string]GeneratedQuestion, len(s.Generated))
		for k, v := range s.Generated {
			out.Generated[k] = v
		}
	}
	return out
}

// swagger:model PracticeSession
type PracticeSession struct {
	UUIDBase

	LearnerID uint `gorm:"index:idx_practice_sessions_learner_skill;type:bigint unsigned;not null" json:"learnerId"`
	SkillID   uint `gorm:"index:idx_practice_sessions_learner_skill;type:bigint unsigned;not null" json:"skillId"`

	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   *time.Time   `gorm:"index" json:"finishedAt,omitempty"`
	FinishReason FinishReason `gorm:"size:20" json:"finishReason,omitempty"`

	QuestionsAnswered int `gorm:"default:0" json:"questionsAnswered"`
	CorrectCount      int `gorm:"default:0" json:"correctCount"`
	IncorrectCount    int `gorm:"default:0" json:"incorrectCount"`

	CurrentSmartScore    int          `gorm:"default:0" json:"currentSmartScore"`
	BestSmartScore       int          `gorm:"default:0" json:"bestSmartScore"`
	CurrentStreakCorrect int          `gorm:"default:0" json:"currentStreakCorrect"`
	MaxStreakCorrect     int          `gorm:"default:0" json:"maxStreakCorrect"`
	WrongStreak          int          `gorm:"default:0" json:"wrongStreak"`
	CurrentZone          PracticeZone `gorm:"size:20;index" json:"currentZone"`

	ActiveTimeSeconds          int       `gorm:"default:0" json:"activeTimeSeconds"`
	InactivityThresholdSeconds int       `gorm:"default:240" json:"inactivityThresholdSeconds"`
	LastActivityAt             time.Time `json:"lastActivityAt"`

	PendingQuestionRef string                           `gorm:"size:64" json:"pendingQuestionRef,omitempty"`
	State              datatypes.JSONType[SessionState] `gorm:"type:json" json:"-"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}

func (s *PracticeSession) IsFinished() bool {
	return s.FinishedAt != nil
}

// Finish marks the session terminal and clears the pending question.
func (s *PracticeSession) Finish(at time.Time, reason FinishReason) {
	s.FinishedAt = &at
	s.FinishReason = reason
	s.PendingQuestionRef = ""
}

// Clone deep-copies the session including its state record.
func (s *PracticeSession) Clone() *PracticeSession {
	out := *s
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	out.State = datatypes.NewJSONType(s.State.Data().Clone())
	return &out
}

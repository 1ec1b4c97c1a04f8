package service

import (
	"time"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/scoring"
)

// QuestionView 返回给学员的题目，不含答案和解析
type QuestionView struct {
	Ref        string             `json:"ref"`
	QuestionID *uint              `json:"questionId,omitempty"`
	Type       model.QuestionType `json:"type"`
	Prompt     string             `json:"prompt"`
	Data       map[string]any     `json:"data"`
	Level      int                `json:"level"`
	Generated  bool               `json:"generated"`
}

// SessionView 会话对外视图
type SessionView struct {
	ID           string             `json:"id"`
	SkillID      uint               `json:"skillId"`
	StartedAt    time.Time          `json:"startedAt"`
	FinishedAt   *time.Time         `json:"finishedAt,omitempty"`
	FinishReason model.FinishReason `json:"finishReason,omitempty"`
	Finished     bool               `json:"finished"`

	QuestionsAnswered int `json:"questionsAnswered"`
	CorrectCount      int `json:"correctCount"`
	IncorrectCount    int `json:"incorrectCount"`

	CurrentSmartScore    int                `json:"currentSmartScore"`
	BestSmartScore       int                `json:"bestSmartScore"`
	CurrentStreakCorrect int                `json:"currentStreakCorrect"`
	MaxStreakCorrect     int                `json:"maxStreakCorrect"`
	WrongStreak          int                `json:"wrongStreak"`
	CurrentZone          model.PracticeZone `json:"currentZone"`
	RecentAccuracy       float64            `json:"recentAccuracy"`

	ActiveTimeSeconds          int       `json:"activeTimeSeconds"`
	InactivityThresholdSeconds int       `json:"inactivityThresholdSeconds"`
	LastActivityAt             time.Time `json:"lastActivityAt"`

	CurrentQuestion *QuestionView `json:"currentQuestion,omitempty"`
	// MasteryStreakTarget 当前题目难度下达到满分所需的连对数
	MasteryStreakTarget int `json:"masteryStreakTarget,omitempty"`
}

func newSessionView(sess *model.PracticeSession, pending *PendingQuestion) *SessionView {
	state := sess.State.Data()
	v := &SessionView{
		ID:                         sess.ID,
		SkillID:                    sess.SkillID,
		StartedAt:                  sess.StartedAt,
		FinishedAt:                 sess.FinishedAt,
		FinishReason:               sess.FinishReason,
		Finished:                   sess.IsFinished(),
		QuestionsAnswered:          sess.QuestionsAnswered,
		CorrectCount:               sess.CorrectCount,
		IncorrectCount:             sess.IncorrectCount,
		CurrentSmartScore:          sess.CurrentSmartScore,
		BestSmartScore:             sess.BestSmartScore,
		CurrentStreakCorrect:       sess.CurrentStreakCorrect,
		MaxStreakCorrect:           sess.MaxStreakCorrect,
		WrongStreak:                sess.WrongStreak,
		CurrentZone:                sess.CurrentZone,
		RecentAccuracy:             state.Window.Accuracy(),
		ActiveTimeSeconds:          sess.ActiveTimeSeconds,
		InactivityThresholdSeconds: sess.InactivityThresholdSeconds,
		LastActivityAt:             sess.LastActivityAt,
	}
	if pending != nil && !v.Finished {
		v.CurrentQuestion = pending.View()
		v.MasteryStreakTarget = scoring.RequiredStreakForMastery(v.CurrentQuestion.Level)
	}
	return v
}

type SubmitRequest struct {
	QuestionRef     string         `json:"questionRef" binding:"required"`
	SubmittedAnswer map[string]any `json:"submittedAnswer"`
	TimeSpentSec    int            `json:"timeSpentSec"`
}

type SubmitResult struct {
	IsCorrect    bool               `json:"isCorrect"`
	Explanation  string             `json:"explanation,omitempty"`
	Delta        int                `json:"delta"`
	Session      *SessionView       `json:"session"`
	NextQuestion *QuestionView      `json:"nextQuestion,omitempty"`
	Finished     bool               `json:"finished"`
	FinishReason model.FinishReason `json:"finishReason,omitempty"`
	// NextUnavailable 作答已记录但未能选出下一题
	NextUnavailable bool `json:"nextUnavailable,omitempty"`
}

type NextResult struct {
	Finished bool          `json:"finished"`
	Question *QuestionView `json:"question,omitempty"`
}

// AttemptView 作答回顾
type AttemptView struct {
	ID              string                 `json:"id"`
	QuestionRef     string                 `json:"questionRef"`
	Question        model.QuestionSnapshot `json:"question"`
	SubmittedAnswer map[string]any         `json:"submittedAnswer"`
	IsCorrect       bool                   `json:"isCorrect"`
	ScoreBefore     int                    `json:"scoreBefore"`
	ScoreAfter      int                    `json:"scoreAfter"`
	ZoneBefore      model.PracticeZone     `json:"zoneBefore"`
	ZoneAfter       model.PracticeZone     `json:"zoneAfter"`
	Delta           int                    `json:"delta"`
	TimeSpentSec    int                    `json:"timeSpentSec"`
	AnsweredAt      time.Time              `json:"answeredAt"`
}

func newAttemptView(a *model.PracticeAttempt) AttemptView {
	return AttemptView{
		ID:              a.ID,
		QuestionRef:     a.QuestionRef,
		Question:        a.Question.Data(),
		SubmittedAnswer: map[string]any(a.SubmittedAnswer),
		IsCorrect:       a.IsCorrect,
		ScoreBefore:     a.ScoreBefore,
		ScoreAfter:      a.ScoreAfter,
		ZoneBefore:      a.ZoneBefore,
		ZoneAfter:       a.ZoneAfter,
		Delta:           a.Delta,
		TimeSpentSec:    a.TimeSpentSec,
		AnsweredAt:      a.AnsweredAt,
	}
}

// Settings 可热更新的练习参数
type Settings struct {
	SessionExpiry time.Duration
}

const DefaultSessionExpiry = 24 * time.Hour

package model

// PracticeZone 练习区间，由 SmartScore 推导
type PracticeZone string

const (
	ZoneLearning  PracticeZone = "LEARNING"
	ZoneRefining  PracticeZone = "REFINING"
	ZoneChallenge PracticeZone = "CHALLENGE"
)

// 题目难度范围
const (
	MinQuestionLevel = 1
	MaxQuestionLevel = 5
)

// ClampLevel 将难度限制在有效范围内
func ClampLevel(level int) int {
	if level < MinQuestionLevel {
		return MinQuestionLevel
	}
	if level > MaxQuestionLevel {
		return MaxQuestionLevel
	}
	return level
}

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionMultiSelect QuestionType = "MULTI_SELECT"
	QuestionNumeric     QuestionType = "NUMERIC"
	QuestionText        QuestionType = "TEXT"
	QuestionInteractive QuestionType = "INTERACTIVE"
	QuestionPlugin      QuestionType = "PLUGIN"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionMultiSelect, QuestionNumeric, QuestionText, QuestionInteractive, QuestionPlugin:
		return true
	}
	return false
}

// FinishReason 会话结束原因
type FinishReason string

const (
	FinishMastered    FinishReason = "mastered"
	FinishWrongStreak FinishReason = "wrong_streak"
	FinishManual      FinishReason = "manual"
	FinishExpired     FinishReason = "expired"
)

type AssignmentState string

const (
	AssignmentNotStarted AssignmentState = "NOT_STARTED"
	AssignmentInProgress AssignmentState = "IN_PROGRESS"
	AssignmentCompleted  AssignmentState = "COMPLETED"
)

type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "FREE"
	PlanPremium SubscriptionPlan = "PREMIUM"
)

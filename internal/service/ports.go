package service

import (
	"context"

	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/model"
)

// SessionStore persists practice sessions, their attempts and the
// per-skill progress snapshot.
type SessionStore interface {
	// FindActive returns the unfinished session for the pair, or nil.
	FindActive(ctx context.Context, learnerID, skillID uint, forUpdate bool) (*model.PracticeSession, error)
	FindByID(ctx context.Context, id string, forUpdate bool) (*model.PracticeSession, error)
	Create(ctx context.Context, s *model.PracticeSession) error
	Save(ctx context.Context, s *model.PracticeSession) error

	HasAttempt(ctx context.Context, sessionID, questionRef string) (bool, error)
	// AddAttempt fails with util.ErrConflict when the ref was already answered.
	AddAttempt(ctx context.Context, a *model.PracticeAttempt) error
	ListAttempts(ctx context.Context, sessionID string) ([]model.PracticeAttempt, error)

	// GetSnapshot returns nil when the learner never practiced the skill.
	GetSnapshot(ctx context.Context, learnerID, skillID uint) (*model.ProgressSnapshot, error)
	UpsertSnapshot(ctx context.Context, s *model.ProgressSnapshot) error
}

type QuestionStore interface {
	Get(ctx context.Context, id uint) (*model.Question, error)
	// Query returns up to limit questions of the skill at the given levels,
	// skipping excludeIDs, in random order.
	Query(ctx context.Context, skillID uint, levels []int, excludeIDs []uint, limit int) ([]model.Question, error)
}

type SkillStore interface {
	Get(ctx context.Context, id uint) (*model.Skill, error)
}

type AssignmentStore interface {
	// ListActive returns the learner's not yet completed assignment rows for
	// the skill, with Assignment loaded.
	ListActive(ctx context.Context, learnerID, skillID uint) ([]model.AssignmentStatus, error)
	SaveStatus(ctx context.Context, s *model.AssignmentStatus) error
}

// Stores groups the stores bound to one unit of work.
type Stores struct {
	Sessions    SessionStore
	Questions   QuestionStore
	Skills      SkillStore
	Assignments AssignmentStore
	Plugins     evaluator.PluginLookup
	Learners    LearnerDirectory
}

// Store hands out stores, either directly or inside a transaction that
// commits when fn returns nil.
type Store interface {
	Stores() Stores
	Transaction(ctx context.Context, fn func(Stores) error) error
}

// LearnerProfile 学员信息，决定不活跃阈值和免费额度
type LearnerProfile struct {
	ID           uint
	Role         model.UserRole
	GradeLevel   *int
	Subscription *model.Subscription
}

type LearnerDirectory interface {
	Profile(ctx context.Context, learnerID uint) (*LearnerProfile, error)
}

type Generator interface {
	Generate(ctx context.Context, code string, metadata map[string]any) (*model.GeneratedQuestion, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, plugins evaluator.PluginLookup, pluginID string, answer map[string]any) (evaluator.Result, error)
}

// SubscriptionLimiter enforces the daily free question quota.
type SubscriptionLimiter interface {
	// Consume counts one question or fails with util.ErrQuotaExceeded.
	Consume(ctx context.Context, learner *LearnerProfile) error
	// Refund gives back a question counted by a submit that did not commit.
	Refund(ctx context.Context, learner *LearnerProfile)
}

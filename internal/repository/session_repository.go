package repository

import (
	"context"
	"errors"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) FindActive(ctx context.Context, learnerID, skillID uint, forUpdate bool) (*model.PracticeSession, error) {
	var sess model.PracticeSession
	err := lockFor(r.DB.WithContext(ctx), forUpdate).
		Where("learner_id = ? AND skill_id = ? AND finished_at IS NULL", learnerID, skillID).
		Order("started_at DESC").
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string, forUpdate bool) (*model.PracticeSession, error) {
	var sess model.PracticeSession
	err := lockFor(r.DB.WithContext(ctx), forUpdate).Where("id = ?", id).First(&sess).Error
	if err != nil {
		return nil, translate(err, "session %s", id)
	}
	return &sess, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *model.PracticeSession) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error, "session %s", s.ID)
}

func (r *SessionRepository) Save(ctx context.Context, s *model.PracticeSession) error {
	return translate(r.DB.WithContext(ctx).Save(s).Error, "session %s", s.ID)
}

func (r *SessionRepository) HasAttempt(ctx context.Context, sessionID, questionRef string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.PracticeAttempt{}).
		Where("session_id = ? AND question_ref = ?", sessionID, questionRef).
		Count(&count).Error
	return count > 0, err
}

// AddAttempt relies on uq_attempt_session_ref for uniqueness.
func (r *SessionRepository) AddAttempt(ctx context.Context, a *model.PracticeAttempt) error {
	return translate(r.DB.WithContext(ctx).Create(a).Error, "question %s already answered", a.QuestionRef)
}

func (r *SessionRepository) ListAttempts(ctx context.Context, sessionID string) ([]model.PracticeAttempt, error) {
	var attempts []model.PracticeAttempt
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("answered_at ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *SessionRepository) GetSnapshot(ctx context.Context, learnerID, skillID uint) (*model.ProgressSnapshot, error) {
	var snap model.ProgressSnapshot
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND skill_id = ?", learnerID, skillID).
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *SessionRepository) UpsertSnapshot(ctx context.Context, s *model.ProgressSnapshot) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "skill_id"}},
			UpdateAll: true,
		}).
		Create(s).Error
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedSkill(t *testing.T, db *gorm.DB) model.Skill {
	t.Helper()
	skill := model.Skill{Code: "ADD", Name: "Addition", IsPublished: true}
	require.NoError(t, db.Create(&skill).Error)
	return skill
}

func newSession(learnerID, skillID uint, at time.Time) *model.PracticeSession {
	var state model.SessionState
	state.Recent.Push(3)
	return &model.PracticeSession{
		LearnerID:      learnerID,
		SkillID:        skillID,
		StartedAt:      at,
		CurrentZone:    model.ZoneLearning,
		LastActivityAt: at,
		State:          datatypes.NewJSONType(state),
	}
}

func TestQuestionRepository_Query(t *testing.T) {
	db := newTestDB(t)
	skill := seedSkill(t, db)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	var ids []uint
	for _, level := range []int{1, 2, 2, 3} {
		q := model.Question{SkillID: skill.ID, Type: model.QuestionNumeric, Prompt: "?", Level: level,
			Data: datatypes.JSONMap{}, CorrectAnswer: datatypes.JSONMap{"value": 1}}
		require.NoError(t, repo.Create(ctx, &q))
		ids = append(ids, q.ID)
	}

	got, err := repo.Query(ctx, skill.ID, []int{2}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.Query(ctx, skill.ID, []int{2}, []uint{ids[1]}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ids[2], got[0].ID)

	got, err = repo.Query(ctx, skill.ID, []int{1, 2, 3}, nil, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	skill := seedSkill(t, db)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	active, err := repo.FindActive(ctx, 1, skill.ID, false)
	require.NoError(t, err)
	assert.Nil(t, active)

	sess := newSession(1, skill.ID, now)
	require.NoError(t, repo.Create(ctx, sess))
	require.NotEmpty(t, sess.ID)

	active, err = repo.FindActive(ctx, 1, skill.ID, true)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, sess.ID, active.ID)
	assert.Equal(t, []uint{3}, active.State.Data().Recent.IDs())

	active.Finish(now.Add(time.Minute), model.FinishManual)
	require.NoError(t, repo.Save(ctx, active))

	active, err = repo.FindActive(ctx, 1, skill.ID, false)
	require.NoError(t, err)
	assert.Nil(t, active)

	loaded, err := repo.FindByID(ctx, sess.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.FinishManual, loaded.FinishReason)

	_, err = repo.FindByID(ctx, "missing", false)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSessionRepository_Attempts(t *testing.T) {
	db := newTestDB(t)
	skill := seedSkill(t, db)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	sess := newSession(1, skill.ID, now)
	require.NoError(t, repo.Create(ctx, sess))

	attempt := func(ref string, at time.Time) *model.PracticeAttempt {
		return &model.PracticeAttempt{
			SessionID:       sess.ID,
			QuestionRef:     ref,
			LearnerID:       1,
			SkillID:         skill.ID,
			Question:        datatypes.NewJSONType(model.QuestionSnapshot{Ref: ref, Type: model.QuestionText, Prompt: "Capital?"}),
			SubmittedAnswer: datatypes.JSONMap{"text": "Astana"},
			AnsweredAt:      at,
		}
	}

	require.NoError(t, repo.AddAttempt(ctx, attempt("gen-2", now.Add(2*time.Second))))
	require.NoError(t, repo.AddAttempt(ctx, attempt("gen-1", now.Add(time.Second))))

	err := repo.AddAttempt(ctx, attempt("gen-1", now.Add(3*time.Second)))
	assert.ErrorIs(t, err, util.ErrConflict)

	has, err := repo.HasAttempt(ctx, sess.ID, "gen-1")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = repo.HasAttempt(ctx, sess.ID, "gen-9")
	require.NoError(t, err)
	assert.False(t, has)

	list, err := repo.ListAttempts(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gen-1", list[0].QuestionRef)
	assert.Equal(t, "Capital?", list[0].Question.Data().Prompt)
}

func TestSessionRepository_Snapshot(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	snap, err := repo.GetSnapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, snap)

	snap = &model.ProgressSnapshot{LearnerID: 1, SkillID: 2}
	snap.Record(15, true, 5, now)
	require.NoError(t, repo.UpsertSnapshot(ctx, snap))

	snap, err = repo.GetSnapshot(ctx, 1, 2)
	require.NoError(t, err)
	snap.Record(0, false, 5, now)
	require.NoError(t, repo.UpsertSnapshot(ctx, snap))

	snap, err = repo.GetSnapshot(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalQuestions)
	assert.Equal(t, 50, snap.AccuracyPercent)
	assert.Equal(t, 15, snap.BestSmartScore)
	assert.Equal(t, 10, snap.TimeSecondsTotal)
}

func TestAssignmentRepository_ListActive(t *testing.T) {
	db := newTestDB(t)
	skill := seedSkill(t, db)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	a := &model.Assignment{SkillID: skill.ID, TargetSmartScore: 70}
	require.NoError(t, repo.Assign(ctx, a, []uint{1, 2}))
	other := &model.Assignment{SkillID: skill.ID + 1}
	require.NoError(t, repo.Assign(ctx, other, []uint{1}))

	rows, err := repo.ListActive(ctx, 1, skill.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 70, rows[0].Assignment.TargetSmartScore)

	rows[0].Apply(80, 80, 10, time.Now())
	require.Equal(t, model.AssignmentCompleted, rows[0].Status)
	require.NoError(t, repo.SaveStatus(ctx, &rows[0]))

	rows, err = repo.ListActive(ctx, 1, skill.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUserRepository_Profile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	grade := 4
	u := &model.User{Name: "Aru", Email: "aru@example.com", Role: model.Student, GradeLevel: &grade}
	require.NoError(t, repo.Create(ctx, u))

	p, err := repo.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Student, p.Role)
	assert.Equal(t, 4, *p.GradeLevel)
	assert.Nil(t, p.Subscription)

	require.NoError(t, repo.SaveSubscription(ctx, &model.Subscription{UserID: u.ID, Plan: model.PlanPremium, IsActive: true}))
	p, err = repo.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Subscription)
	assert.True(t, p.Subscription.Unlimited(time.Now()))

	_, err = repo.Profile(ctx, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)

	err = repo.Create(ctx, &model.User{Name: "Dup", Email: "aru@example.com"})
	assert.ErrorIs(t, err, util.ErrConflict)
}

func TestPluginRepository_FindPlugin(t *testing.T) {
	db := newTestDB(t)
	repo := NewPluginRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Plugin{PluginID: "fractions", Name: "Fractions", Enabled: true}))

	p, err := repo.FindPlugin(ctx, "fractions")
	require.NoError(t, err)
	assert.Equal(t, "Fractions", p.Name)

	_, err = repo.FindPlugin(ctx, "nope")
	assert.ErrorIs(t, err, evaluator.ErrPluginNotFound)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	db := newTestDB(t)
	skill := seedSkill(t, db)
	store := NewGormStore(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var id string
	boom := errors.New("boom")
	err := store.Transaction(ctx, func(st service.Stores) error {
		sess := newSession(1, skill.ID, now)
		if err := st.Sessions.Create(ctx, sess); err != nil {
			return err
		}
		id = sess.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Stores().Sessions.FindByID(ctx, id, false)
	assert.ErrorIs(t, err, util.ErrNotFound)

	err = store.Transaction(ctx, func(st service.Stores) error {
		return st.Sessions.Create(ctx, newSession(1, skill.ID, now))
	})
	require.NoError(t, err)
	active, err := store.Stores().Sessions.FindActive(ctx, 1, skill.ID, false)
	require.NoError(t, err)
	assert.NotNil(t, active)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erkezh/studypoint-edu/internal/service"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements service.Store on a gorm connection.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) Stores() service.Stores {
	return storesFor(s.DB)
}

// Transaction runs fn with stores bound to a single database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(service.Stores) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(storesFor(tx))
	})
}

func storesFor(db *gorm.DB) service.Stores {
	return service.Stores{
		Sessions:    NewSessionRepository(db),
		Questions:   NewQuestionRepository(db),
		Skills:      NewSkillRepository(db),
		Assignments: NewAssignmentRepository(db),
		Plugins:     NewPluginRepository(db),
		Learners:    NewUserRepository(db),
	}
}

// translate 将 gorm 错误映射为业务错误
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", util.ErrNotFound, fmt.Sprintf(format, args...))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", util.ErrConflict, fmt.Sprintf(format, args...))
	default:
		return err
	}
}

func lockFor(db *gorm.DB, forUpdate bool) *gorm.DB {
	if forUpdate {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func randomOrder(db *gorm.DB) clause.OrderBy {
	fn := "RANDOM()"
	if db.Dialector.Name() == "mysql" {
		fn = "RAND()"
	}
	return clause.OrderBy{Expression: clause.Expr{SQL: fn}}
}

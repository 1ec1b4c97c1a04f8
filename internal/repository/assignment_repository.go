package repository

import (
	"context"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// ListActive 学生在该技能上未完成的作业
func (r *AssignmentRepository) ListActive(ctx context.Context, learnerID, skillID uint) ([]model.AssignmentStatus, error) {
	var rows []model.AssignmentStatus
	err := r.DB.WithContext(ctx).
		Joins("JOIN assignments ON assignments.id = assignment_status.assignment_id").
		Where("assignment_status.student_id = ? AND assignments.skill_id = ? AND assignment_status.status <> ?",
			learnerID, skillID, model.AssignmentCompleted).
		Preload("Assignment").
		Order("assignment_status.id").
		Find(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) SaveStatus(ctx context.Context, s *model.AssignmentStatus) error {
	return translate(r.DB.WithContext(ctx).Omit(clause.Associations).Save(s).Error, "assignment status %s", s.ID)
}

// Assign creates the assignment and one NOT_STARTED row per student.
func (r *AssignmentRepository) Assign(ctx context.Context, a *model.Assignment, studentIDs []uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		for _, sid := range studentIDs {
			row := &model.AssignmentStatus{AssignmentID: a.ID, StudentID: sid, Status: model.AssignmentNotStarted}
			if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
				return translate(err, "student %d already assigned", sid)
			}
		}
		return nil
	})
}

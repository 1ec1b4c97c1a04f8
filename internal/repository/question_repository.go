package repository

import (
	"context"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Get(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, translate(err, "question %d", id)
	}
	return &q, nil
}

// Query 按难度取题，数据库随机排序
func (r *QuestionRepository) Query(ctx context.Context, skillID uint, levels []int, excludeIDs []uint, limit int) ([]model.Question, error) {
	db := r.DB.WithContext(ctx).Where("skill_id = ?", skillID)
	if len(levels) > 0 {
		db = db.Where("level IN ?", levels)
	}
	if len(excludeIDs) > 0 {
		db = db.Where("id NOT IN ?", excludeIDs)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var questions []model.Question
	err := db.Clauses(randomOrder(r.DB)).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.DB.WithContext(ctx).Create(q).Error
}

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) Get(ctx context.Context, id uint) (*model.Skill, error) {
	var s model.Skill
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err, "skill %d", id)
	}
	return &s, nil
}

func (r *SkillRepository) FindByCode(ctx context.Context, code string) (*model.Skill, error) {
	var s model.Skill
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&s).Error; err != nil {
		return nil, translate(err, "skill %s", code)
	}
	return &s, nil
}

func (r *SkillRepository) Create(ctx context.Context, s *model.Skill) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error, "skill %s", s.Code)
}

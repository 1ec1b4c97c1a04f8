package repository

import (
	"context"
	"errors"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/service"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

var _ service.LearnerDirectory = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error, "user %s", user.Email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user %d", id)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user %s", email)
	}
	return &user, nil
}

// Profile 读取学员年级与订阅
func (r *UserRepository) Profile(ctx context.Context, learnerID uint) (*service.LearnerProfile, error) {
	user, err := r.FindByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	p := &service.LearnerProfile{ID: user.ID, Role: user.Role, GradeLevel: user.GradeLevel}

	var sub model.Subscription
	err = r.DB.WithContext(ctx).Where("user_id = ?", learnerID).First(&sub).Error
	switch {
	case err == nil:
		p.Subscription = &sub
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	return r.DB.WithContext(ctx).Save(sub).Error
}

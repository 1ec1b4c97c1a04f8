package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// Elevated 教师和管理员不受免费题量限制
func (r UserRole) Elevated() bool {
	return r == Teacher || r == Admin
}

// swagger:model User
type User struct {
	BaseModel
	Name       string   `gorm:"size:100;not null" json:"name"`
	Email      string   `gorm:"size:100;unique;not null" json:"email"`
	Role       UserRole `gorm:"size:20;default:'student'" json:"role"`
	GradeLevel *int     `json:"gradeLevel,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// swagger:model Subscription
type Subscription struct {
	BaseModel
	UserID    uint             `gorm:"uniqueIndex;type:bigint unsigned" json:"userId"`
	Plan      SubscriptionPlan `gorm:"size:20;default:'FREE'" json:"plan"`
	IsActive  bool             `gorm:"default:true" json:"isActive"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Unlimited reports whether the subscription lifts the daily free quota at now.
func (s *Subscription) Unlimited(now time.Time) bool {
	if s == nil || !s.IsActive || s.Plan != PlanPremium {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

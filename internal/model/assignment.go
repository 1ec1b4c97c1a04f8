package model

import "time"

const DefaultAssignmentTarget = 80

// swagger:model Assignment
type Assignment struct {
	UUIDBase

	ClassroomID      uint       `gorm:"index;type:bigint unsigned" json:"classroomId"`
	SkillID          uint       `gorm:"index;type:bigint unsigned;not null" json:"skillId"`
	DueAt            *time.Time `json:"dueAt,omitempty"`
	TargetSmartScore int        `gorm:"default:80" json:"targetSmartScore"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentStatus 学生在某个作业上的进度
type AssignmentStatus struct {
	UUIDBase

	AssignmentID string          `gorm:"size:36;not null;uniqueIndex:uq_assignment_student" json:"assignmentId"`
	StudentID    uint            `gorm:"type:bigint unsigned;not null;uniqueIndex:uq_assignment_student;index" json:"studentId"`
	Status       AssignmentState `gorm:"size:20;not null;default:'NOT_STARTED'" json:"status"`

	BestSmartScore    int        `gorm:"default:0" json:"bestSmartScore"`
	LastSmartScore    int        `gorm:"default:0" json:"lastSmartScore"`
	QuestionsAnswered int        `gorm:"default:0" json:"questionsAnswered"`
	TimeSpentSeconds  int        `gorm:"default:0" json:"timeSpentSeconds"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	LastActivityAt    *time.Time `json:"lastActivityAt,omitempty"`

	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"assignment"`
}

func (AssignmentStatus) TableName() string {
	return "assignment_status"
}

func (s *AssignmentStatus) target() int {
	if s.Assignment.TargetSmartScore <= 0 {
		return DefaultAssignmentTarget
	}
	return s.Assignment.TargetSmartScore
}

// Apply records one submitted answer against the assignment.
func (s *AssignmentStatus) Apply(lastScore, bestScore, timeSpentSec int, at time.Time) {
	if s.Status == AssignmentNotStarted || s.Status == "" {
		s.Status = AssignmentInProgress
	}
	s.LastSmartScore = lastScore
	if bestScore > s.BestSmartScore {
		s.BestSmartScore = bestScore
	}
	s.QuestionsAnswered++
	if timeSpentSec > 0 {
		s.TimeSpentSeconds += timeSpentSec
	}
	s.LastActivityAt = &at
	if s.BestSmartScore >= s.target() && s.Status != AssignmentCompleted {
		s.Status = AssignmentCompleted
		s.CompletedAt = &at
	}
}

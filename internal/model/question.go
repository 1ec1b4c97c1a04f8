package model

import (
	"strconv"

	"gorm.io/datatypes"
)

// swagger:model Question
type Question struct {
	BaseModel

	SkillID       uint              `gorm:"index:idx_questions_skill_level;type:bigint unsigned;not null" json:"skillId"`
	Type          QuestionType      `gorm:"size:20;not null" json:"type"`
	Prompt        string            `gorm:"type:text" json:"prompt"`
	Data          datatypes.JSONMap `gorm:"type:json" json:"data"` // choices, tolerance, plugin_id ...
	CorrectAnswer datatypes.JSONMap `gorm:"type:json" json:"-"`
	Explanation   string            `gorm:"type:text" json:"-"`
	Level         int               `gorm:"index:idx_questions_skill_level;default:1" json:"level"` // 1-5
}

func (Question) TableName() string {
	return "questions"
}

// Ref 题库题目在会话中的标识
func (q *Question) Ref() string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

// swagger:model Skill
type Skill struct {
	BaseModel

	Code              string            `gorm:"size:50;uniqueIndex" json:"code"`
	Name              string            `gorm:"size:255;not null" json:"name"`
	GradeLevel        int               `json:"gradeLevel"`
	IsPublished       bool              `gorm:"default:false" json:"isPublished"`
	GeneratorCode     string            `gorm:"type:text" json:"-"`
	GeneratorMetadata datatypes.JSONMap `gorm:"type:json" json:"-"`
}

func (Skill) TableName() string {
	return "skills"
}

func (s *Skill) HasGenerator() bool {
	return s.GeneratorCode != ""
}

// swagger:model Plugin
type Plugin struct {
	BaseModel

	PluginID string `gorm:"size:100;uniqueIndex;not null" json:"pluginId"` // manifest id
	Name     string `gorm:"size:255" json:"name"`
	Enabled  bool   `gorm:"default:true" json:"enabled"`
}

func (Plugin) TableName() string {
	return "plugins"
}

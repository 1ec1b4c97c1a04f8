package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/repository"
	"github.com/Erkezh/studypoint-edu/internal/repository/memstore"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DemoSkillCode      = "DEMO-ADD"
	GeneratedSkillCode = "DEMO-GEN-ADD"
)

// additionGenerator 随机两位数加法
const additionGenerator = `
let a = randint(metadata.min ?? 10, metadata.max ?? 99);
let b = randint(metadata.min ?? 10, metadata.max ?? 99);
{
  prompt: format("%d + %d = ?", a, b),
  type: "NUMERIC",
  data: {tolerance: 0},
  correct_answer: {value: a + b},
  explanation: format("%d + %d = %d", a, b, a + b),
  level: 3
}`

// ContentWriter is where demo content gets written.
type ContentWriter interface {
	SkillExists(ctx context.Context, code string) (bool, error)
	CreateSkill(ctx context.Context, s *model.Skill) error
	CreateQuestion(ctx context.Context, q *model.Question) error
	CreatePlugin(ctx context.Context, p *model.Plugin) error
}

type gormContent struct {
	skills    *repository.SkillRepository
	questions *repository.QuestionRepository
	plugins   *repository.PluginRepository
}

func NewGormContent(db *gorm.DB) ContentWriter {
	return &gormContent{
		skills:    repository.NewSkillRepository(db),
		questions: repository.NewQuestionRepository(db),
		plugins:   repository.NewPluginRepository(db),
	}
}

func (g *gormContent) SkillExists(ctx context.Context, code string) (bool, error) {
	_, err := g.skills.FindByCode(ctx, code)
	if errors.Is(err, util.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (g *gormContent) CreateSkill(ctx context.Context, s *model.Skill) error {
	return g.skills.Create(ctx, s)
}

func (g *gormContent) CreateQuestion(ctx context.Context, q *model.Question) error {
	return g.questions.Create(ctx, q)
}

func (g *gormContent) CreatePlugin(ctx context.Context, p *model.Plugin) error {
	err := g.plugins.Create(ctx, p)
	if errors.Is(err, util.ErrConflict) {
		return nil
	}
	return err
}

type memContent struct {
	store *memstore.Store
	codes map[string]bool
}

func newMemContent(store *memstore.Store) ContentWriter {
	return &memContent{store: store, codes: map[string]bool{}}
}

func (m *memContent) SkillExists(_ context.Context, code string) (bool, error) {
	return m.codes[code], nil
}

func (m *memContent) CreateSkill(_ context.Context, s *model.Skill) error {
	*s = m.store.AddSkill(*s)
	m.codes[s.Code] = true
	return nil
}

func (m *memContent) CreateQuestion(_ context.Context, q *model.Question) error {
	*q = m.store.AddQuestion(*q)
	return nil
}

func (m *memContent) CreatePlugin(_ context.Context, p *model.Plugin) error {
	m.store.AddPlugin(*p)
	return nil
}

func demoQuestions(skillID uint) []model.Question {
	qs := []model.Question{
		{Type: model.QuestionMCQ, Prompt: "4 + 3 = ?", Level: 1,
			Data:          map[string]interface{}{"choices": []interface{}{"6", "7", "8", "9"}},
			CorrectAnswer: map[string]interface{}{"choice": "7"}, Explanation: "4 + 3 = 7"},
		{Type: model.QuestionNumeric, Prompt: "8 + 5 = ?", Level: 1,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(13)}, Explanation: "8 + 5 = 13"},
		{Type: model.QuestionNumeric, Prompt: "9 + 9 = ?", Level: 2,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(18)}, Explanation: "9 + 9 = 18"},
		{Type: model.QuestionMultiSelect, Prompt: "Which sums equal 10?", Level: 2,
			Data:          map[string]interface{}{"choices": []interface{}{"3 + 7", "4 + 5", "6 + 4", "2 + 9"}},
			CorrectAnswer: map[string]interface{}{"choices": []interface{}{"3 + 7", "6 + 4"}}, Explanation: "3 + 7 and 6 + 4 make 10"},
		{Type: model.QuestionText, Prompt: "Write 12 + 8 in words", Level: 2,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"text": "twenty"}, Explanation: "12 + 8 = 20, twenty"},
		{Type: model.QuestionNumeric, Prompt: "27 + 15 = ?", Level: 3,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(42)}, Explanation: "27 + 15 = 42"},
		{Type: model.QuestionNumeric, Prompt: "38 + 46 = ?", Level: 3,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(84)}, Explanation: "38 + 46 = 84"},
		{Type: model.QuestionPlugin, Prompt: "Solve with the blocks", Level: 3,
			Data: map[string]interface{}{"plugin_id": "math-addition-example", "question": "23 + 19 = ?"}},
		{Type: model.QuestionNumeric, Prompt: "125 + 278 = ?", Level: 4,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(403)}, Explanation: "125 + 278 = 403"},
		{Type: model.QuestionMCQ, Prompt: "349 + 451 = ?", Level: 4,
			Data:          map[string]interface{}{"choices": []interface{}{"700", "790", "800", "810"}},
			CorrectAnswer: map[string]interface{}{"choice": "800"}, Explanation: "349 + 451 = 800"},
		{Type: model.QuestionNumeric, Prompt: "1.25 + 2.5 = ?", Level: 5,
			Data:          map[string]interface{}{"tolerance": 0.001},
			CorrectAnswer: map[string]interface{}{"value": 3.75}, Explanation: "1.25 + 2.50 = 3.75"},
		{Type: model.QuestionNumeric, Prompt: "999 + 1001 = ?", Level: 5,
			Data:          map[string]interface{}{},
			CorrectAnswer: map[string]interface{}{"value": float64(2000)}, Explanation: "999 + 1001 = 2000"},
	}
	for i := range qs {
		qs[i].SkillID = skillID
	}
	return qs
}

// SeedDemo writes a banked demo skill and a generator skill and returns the
// skills it created. Skills that already exist are left alone.
func SeedDemo(ctx context.Context, w ContentWriter) ([]model.Skill, error) {
	var created []model.Skill
	if err := w.CreatePlugin(ctx, &model.Plugin{PluginID: "math-addition-example", Name: "Addition blocks", Enabled: true}); err != nil {
		return nil, fmt.Errorf("seed plugin: %w", err)
	}
	if err := w.CreatePlugin(ctx, &model.Plugin{PluginID: "drag-drop-math-example", Name: "Drag and drop sums", Enabled: true}); err != nil {
		return nil, fmt.Errorf("seed plugin: %w", err)
	}

	exists, err := w.SkillExists(ctx, DemoSkillCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		skill := &model.Skill{Code: DemoSkillCode, Name: "Addition practice", GradeLevel: 2, IsPublished: true}
		if err := w.CreateSkill(ctx, skill); err != nil {
			return nil, fmt.Errorf("seed skill: %w", err)
		}
		for _, q := range demoQuestions(skill.ID) {
			if err := w.CreateQuestion(ctx, &q); err != nil {
				return nil, fmt.Errorf("seed question: %w", err)
			}
		}
		created = append(created, *skill)
		logger.Log.Info("Seeded demo skill", zap.String("code", DemoSkillCode), zap.Uint("skill_id", skill.ID))
	}

	exists, err = w.SkillExists(ctx, GeneratedSkillCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		skill := &model.Skill{
			Code:              GeneratedSkillCode,
			Name:              "Two digit addition",
			GradeLevel:        3,
			IsPublished:       true,
			GeneratorCode:     additionGenerator,
			GeneratorMetadata: map[string]interface{}{"min": float64(10), "max": float64(99)},
		}
		if err := w.CreateSkill(ctx, skill); err != nil {
			return nil, fmt.Errorf("seed generator skill: %w", err)
		}
		created = append(created, *skill)
		logger.Log.Info("Seeded generator skill", zap.String("code", GeneratedSkillCode), zap.Uint("skill_id", skill.ID))
	}
	return created, nil
}

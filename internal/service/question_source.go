package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/selector"
	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/monitoring"
	"go.uber.org/zap"
)

const generatedRefPrefix = "gen-"

// SourceKind 题目来源
type SourceKind int

const (
	SourceBanked SourceKind = iota
	SourceGenerated
)

func (k SourceKind) String() string {
	if k == SourceGenerated {
		return "generated"
	}
	return "banked"
}

// PendingQuestion is the question a session is waiting on, from either the
// bank or the skill's generator.
type PendingQuestion struct {
	Kind      SourceKind
	Ref       string
	Banked    *model.Question
	Generated *model.GeneratedQuestion
}

func bankedQuestion(q *model.Question) *PendingQuestion {
	return &PendingQuestion{Kind: SourceBanked, Ref: q.Ref(), Banked: q}
}

func generatedQuestion(ref string, g model.GeneratedQuestion) *PendingQuestion {
	return &PendingQuestion{Kind: SourceGenerated, Ref: ref, Generated: &g}
}

// IsGeneratedRef reports whether ref was minted for a generated question.
func IsGeneratedRef(ref string) bool {
	return strings.HasPrefix(ref, generatedRefPrefix)
}

func (p *PendingQuestion) QuestionID() *uint {
	if p.Kind != SourceBanked {
		return nil
	}
	id := p.Banked.ID
	return &id
}

// Snapshot freezes the question content for the attempt record.
func (p *PendingQuestion) Snapshot() model.QuestionSnapshot {
	if p.Kind == SourceGenerated {
		g := p.Generated
		return model.QuestionSnapshot{
			Ref:           p.Ref,
			Type:          g.Type,
			Prompt:        g.Prompt,
			Data:          g.Data,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
			Level:         g.Level,
		}
	}
	q := p.Banked
	return model.QuestionSnapshot{
		QuestionID:    p.QuestionID(),
		Ref:           p.Ref,
		Type:          q.Type,
		Prompt:        q.Prompt,
		Data:          map[string]any(q.Data),
		CorrectAnswer: map[string]any(q.CorrectAnswer),
		Explanation:   q.Explanation,
		Level:         q.Level,
	}
}

// View strips the correct answer and explanation.
func (p *PendingQuestion) View() *QuestionView {
	snap := p.Snapshot()
	return &QuestionView{
		Ref:        p.Ref,
		QuestionID: snap.QuestionID,
		Type:       snap.Type,
		Prompt:     snap.Prompt,
		Data:       snap.Data,
		Level:      snap.Level,
		Generated:  p.Kind == SourceGenerated,
	}
}

// nextQuestion picks the session's next question and records it in state.
//
// Skills with a generator try it first and fall back to the bank once; an
// empty bank behind a failing generator is a content configuration error.
// Bank-only skills with no questions are NotFound.
func (s *PracticeService) nextQuestion(ctx context.Context, st Stores, skill *model.Skill, sess *model.PracticeSession, state *model.SessionState) (*PendingQuestion, error) {
	sel := selector.New(st.Questions)

	if skill.HasGenerator() && s.generator != nil {
		g, err := s.generator.Generate(ctx, skill.GeneratorCode, map[string]any(skill.GeneratorMetadata))
		if err == nil {
			state.GeneratedSeq++
			ref := generatedRefPrefix + strconv.Itoa(state.GeneratedSeq)
			if state.Generated == nil {
				state.Generated = make(map[string]model.GeneratedQuestion)
			}
			state.Generated[ref] = *g
			return generatedQuestion(ref, *g), nil
		}

		monitoring.GeneratorFailures.Inc()
		s.logger.Warn("Question generator failed, falling back to bank",
			zap.String("session_id", sess.ID),
			zap.Uint("skill_id", skill.ID),
			zap.Error(err),
		)

		q, bankErr := sel.Next(ctx, skill.ID, sess.CurrentZone, &state.Recent)
		if bankErr != nil {
			if errors.Is(bankErr, selector.ErrNoQuestions) {
				return nil, fmt.Errorf("%w: generator for skill %d failed and the bank is empty: %v", util.ErrConfiguration, skill.ID, err)
			}
			return nil, bankErr
		}
		return bankedQuestion(q), nil
	}

	q, err := sel.Next(ctx, skill.ID, sess.CurrentZone, &state.Recent)
	if err != nil {
		if errors.Is(err, selector.ErrNoQuestions) {
			return nil, fmt.Errorf("%w: no questions available for skill %d", util.ErrNotFound, skill.ID)
		}
		return nil, err
	}
	return bankedQuestion(q), nil
}

// resolve loads the question behind ref.
func resolve(ctx context.Context, st Stores, sess *model.PracticeSession, state *model.SessionState, ref string) (*PendingQuestion, error) {
	if IsGeneratedRef(ref) {
		g, ok := state.Generated[ref]
		if !ok {
			return nil, fmt.Errorf("%w: generated question %s", util.ErrNotFound, ref)
		}
		return generatedQuestion(ref, g), nil
	}

	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed question ref %q", util.ErrValidation, ref)
	}
	q, err := st.Questions.Get(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if q.SkillID != sess.SkillID {
		return nil, fmt.Errorf("%w: question %d does not belong to skill %d", util.ErrNotFound, q.ID, sess.SkillID)
	}
	return bankedQuestion(q), nil
}

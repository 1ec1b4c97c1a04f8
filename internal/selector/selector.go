// Package selector picks the next banked question for a practice session.
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erkezh/studypoint-edu/internal/model"
)

// ErrNoQuestions 技能下没有任何可用题目
var ErrNoQuestions = errors.New("no questions available for skill")

// Finder is the read side of the question bank the selector needs.
// Query must return candidates in random order.
type Finder interface {
	Query(ctx context.Context, skillID uint, levels []int, excludeIDs []uint, limit int) ([]model.Question, error)
}

type Selector struct {
	finder Finder
}

func New(finder Finder) *Selector {
	return &Selector{finder: finder}
}

// TargetLevel 挑战区出 3 级题，其余出 2 级题
func TargetLevel(zone model.PracticeZone) int {
	if zone == model.ZoneChallenge {
		return 3
	}
	return 2
}

// LevelOrder returns target followed by alternating neighbours, clipped to
// the valid level range.
func LevelOrder(target int) []int {
	target = model.ClampLevel(target)
	order := []int{target}
	for d := 1; d < model.MaxQuestionLevel; d++ {
		if hi := target + d; hi <= model.MaxQuestionLevel {
			order = append(order, hi)
		}
		if lo := target - d; lo >= model.MinQuestionLevel {
			order = append(order, lo)
		}
	}
	return order
}

// Next selects a question for the zone, preferring ids not in recent, and
// records the choice in recent.
func (s *Selector) Next(ctx context.Context, skillID uint, zone model.PracticeZone, recent *model.RecentQuestions) (*model.Question, error) {
	order := LevelOrder(TargetLevel(zone))

	q, err := s.search(ctx, skillID, order, recent.IDs())
	if err != nil {
		return nil, err
	}
	if q == nil {
		// 题库已全部出现过，允许重复
		q, err = s.search(ctx, skillID, order, nil)
		if err != nil {
			return nil, err
		}
	}
	if q == nil {
		return nil, fmt.Errorf("%w: skill %d", ErrNoQuestions, skillID)
	}

	recent.Push(q.ID)
	return q, nil
}

func (s *Selector) search(ctx context.Context, skillID uint, order []int, exclude []uint) (*model.Question, error) {
	for _, level := range order {
		found, err := s.finder.Query(ctx, skillID, []int{level}, exclude, 1)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			q := found[0]
			return &q, nil
		}
	}
	return nil, nil
}

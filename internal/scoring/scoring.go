// Package scoring implements the SmartScore update rule.
package scoring

import "github.com/Erkezh/studypoint-edu/internal/model"

const (
	MinScore = 0
	MaxScore = 100

	MinLevel = model.MinQuestionLevel
	MaxLevel = model.MaxQuestionLevel
)

// Input 一次作答前的会话状态
type Input struct {
	Score         int
	Zone          model.PracticeZone
	Level         int
	Correct       bool
	CorrectStreak int
	WrongStreak   int
}

// Result 一次作答后的会话状态
type Result struct {
	Score         int
	CorrectStreak int
	WrongStreak   int
	Zone          model.PracticeZone
	Delta         int
}

// ZoneFor derives the practice zone from a score.
func ZoneFor(score int) model.PracticeZone {
	switch {
	case score >= 90:
		return model.ZoneChallenge
	case score >= 70:
		return model.ZoneRefining
	default:
		return model.ZoneLearning
	}
}

// Compute applies one answer to the score.
//
// A correct answer earns 16 minus the new streak length, never less than 1.
// An incorrect answer costs as many points as there are consecutive misses.
// The zone is always derived from the resulting score; in.Zone is accepted
// for symmetry with the stored session but does not influence the result.
func Compute(in Input) Result {
	score := clamp(in.Score, MinScore, MaxScore)
	streak := max(in.CorrectStreak, 0)
	wrong := max(in.WrongStreak, 0)

	var delta int
	if in.Correct {
		streak++
		wrong = 0
		delta = max(1, 16-streak)
	} else {
		wrong++
		streak = 0
		delta = -wrong
	}

	next := clamp(score+delta, MinScore, MaxScore)
	return Result{
		Score:         next,
		CorrectStreak: streak,
		WrongStreak:   wrong,
		Zone:          ZoneFor(next),
		Delta:         delta,
	}
}

var masteryStreak = map[int]int{1: 6, 2: 7, 3: 8, 4: 9, 5: 10}

// RequiredStreakForMastery returns how many consecutive correct answers at
// the given level are needed before a score near 100 counts as mastery.
func RequiredStreakForMastery(level int) int {
	return masteryStreak[ClampLevel(level)]
}

func ClampLevel(level int) int {
	return model.ClampLevel(level)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

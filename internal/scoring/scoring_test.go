package scoring

import (
	"testing"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.PracticeZone
	}{
		{0, model.ZoneLearning},
		{69, model.ZoneLearning},
		{70, model.ZoneRefining},
		{89, model.ZoneRefining},
		{90, model.ZoneChallenge},
		{100, model.ZoneChallenge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ZoneFor(tt.score), "score %d", tt.score)
	}
}

func TestCompute_IncorrectExample(t *testing.T) {
	got := Compute(Input{Score: 50, Zone: model.ZoneLearning, Level: 2, Correct: false})

	assert.Equal(t, -1, got.Delta)
	assert.Equal(t, 49, got.Score)
	assert.Equal(t, 0, got.CorrectStreak)
	assert.Equal(t, 1, got.WrongStreak)
	assert.Equal(t, model.ZoneLearning, got.Zone)
}

func TestCompute_CorrectClampsToMax(t *testing.T) {
	got := Compute(Input{Score: 85, Zone: model.ZoneRefining, Level: 2, Correct: true})

	assert.Equal(t, 15, got.Delta)
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, 1, got.CorrectStreak)
	assert.Equal(t, model.ZoneChallenge, got.Zone)
}

func TestCompute_CorrectRunDeltas(t *testing.T) {
	in := Input{Score: 0, Level: 3}
	var deltas []int
	for i := 0; i < 20; i++ {
		in.Correct = true
		res := Compute(in)
		deltas = append(deltas, res.Delta)
		in.Score, in.Zone = 0, res.Zone // keep the score low so only deltas matter
		in.CorrectStreak, in.WrongStreak = res.CorrectStreak, res.WrongStreak
	}

	require.Equal(t, 15, deltas[0])
	for i := 1; i < len(deltas); i++ {
		assert.LessOrEqual(t, deltas[i], deltas[i-1])
		assert.GreaterOrEqual(t, deltas[i], 1)
	}
	assert.Equal(t, 1, deltas[14])
	assert.Equal(t, 1, deltas[19])
}

func TestCompute_IncorrectRunDeltas(t *testing.T) {
	in := Input{Score: 100, Level: 1}
	for i := 1; i <= 5; i++ {
		res := Compute(in)
		assert.Equal(t, -i, res.Delta)
		in.Score = res.Score
		in.CorrectStreak, in.WrongStreak = res.CorrectStreak, res.WrongStreak
	}
	assert.Equal(t, 100-1-2-3-4-5, in.Score)
}

func TestCompute_StreakResets(t *testing.T) {
	res := Compute(Input{Score: 40, Correct: false, CorrectStreak: 7})
	assert.Equal(t, 0, res.CorrectStreak)

	res = Compute(Input{Score: 40, Correct: true, WrongStreak: 2})
	assert.Equal(t, 0, res.WrongStreak)
	assert.Equal(t, 1, res.CorrectStreak)
}

func TestCompute_RangeAndZoneInvariant(t *testing.T) {
	for score := -5; score <= 105; score += 5 {
		for streak := 0; streak < 20; streak += 3 {
			for _, correct := range []bool{true, false} {
				res := Compute(Input{Score: score, Level: 3, Correct: correct, CorrectStreak: streak, WrongStreak: streak})
				assert.GreaterOrEqual(t, res.Score, MinScore)
				assert.LessOrEqual(t, res.Score, MaxScore)
				assert.Equal(t, ZoneFor(res.Score), res.Zone)
			}
		}
	}
}

func TestCompute_ZoneIgnoresInput(t *testing.T) {
	res := Compute(Input{Score: 20, Zone: model.ZoneChallenge, Correct: false})
	assert.Equal(t, model.ZoneLearning, res.Zone)
}

func TestRequiredStreakForMastery(t *testing.T) {
	for level, want := range map[int]int{1: 6, 2: 7, 3: 8, 4: 9, 5: 10} {
		assert.Equal(t, want, RequiredStreakForMastery(level))
	}
	assert.Equal(t, 6, RequiredStreakForMastery(0))
	assert.Equal(t, 10, RequiredStreakForMastery(9))
}

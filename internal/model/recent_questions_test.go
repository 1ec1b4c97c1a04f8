package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentQuestions_PushMovesToFront(t *testing.T) {
	var r RecentQuestions
	r.Push(1)
	r.Push(2)
	r.Push(3)
	r.Push(1)

	assert.Equal(t, []uint{1, 3, 2}, r.IDs())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(9))
}

func TestRecentQuestions_Capacity(t *testing.T) {
	var r RecentQuestions
	for i := uint(1); i <= 25; i++ {
		r.Push(i)
	}
	require.Equal(t, RecentQuestionsCapacity, r.Len())
	ids := r.IDs()
	assert.Equal(t, uint(25), ids[0])
	assert.Equal(t, uint(6), ids[len(ids)-1])
	assert.False(t, r.Contains(5))
}

func TestRecentQuestions_JSON(t *testing.T) {
	var r RecentQuestions
	r.Push(4)
	r.Push(7)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `[7,4]`, string(b))

	var back RecentQuestions
	require.NoError(t, json.Unmarshal([]byte(`[9,8,9,7]`), &back))
	assert.Equal(t, []uint{9, 8, 7}, back.IDs())
}

func TestRollingWindow_Decay(t *testing.T) {
	var w RollingWindow
	for i := 0; i < 19; i++ {
		w.Record(true)
	}
	assert.Equal(t, RollingWindow{Correct: 19, Total: 19}, w)

	w.Record(true)
	assert.Equal(t, 20, w.Total)
	assert.Equal(t, 19, w.Correct) // round(20*0.95)

	w.Record(false)
	assert.Equal(t, 20, w.Total)
	assert.Equal(t, 18, w.Correct)
}

func TestProgressSnapshot_Record(t *testing.T) {
	var p ProgressSnapshot
	now := mustTime(t)

	p.Record(15, true, 10, now)
	p.Record(14, false, 5, now)

	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, 50, p.AccuracyPercent)
	assert.Equal(t, 15, p.BestSmartScore)
	assert.Equal(t, 14, p.LastSmartScore)
	assert.Equal(t, 15, p.TimeSecondsTotal)
	assert.Equal(t, 2, p.QuestionsAnsweredTotal)
}

func TestAssignmentStatus_Apply(t *testing.T) {
	now := mustTime(t)
	s := AssignmentStatus{Status: AssignmentNotStarted, Assignment: Assignment{TargetSmartScore: 70}}

	s.Apply(40, 40, 12, now)
	assert.Equal(t, AssignmentInProgress, s.Status)
	assert.Nil(t, s.CompletedAt)

	s.Apply(72, 72, 3, now)
	assert.Equal(t, AssignmentCompleted, s.Status)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, 2, s.QuestionsAnswered)
	assert.Equal(t, 15, s.TimeSpentSeconds)
}

func TestSessionState_CloneIsolated(t *testing.T) {
	st := SessionState{Generated: map[string]GeneratedQuestion{"gen-1": {Prompt: "a"}}}
	st.Recent.Push(3)

	c := st.Clone()
	c.Recent.Push(4)
	c.Generated["gen-2"] = GeneratedQuestion{}

	assert.Equal(t, []uint{3}, st.Recent.IDs())
	assert.Len(t, st.Generated, 1)
}

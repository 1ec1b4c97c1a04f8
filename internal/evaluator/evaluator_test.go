package evaluator

import (
	"context"
	"testing"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugins map[string]*model.Plugin

func (f fakePlugins) FindPlugin(_ context.Context, id string) (*model.Plugin, error) {
	p, ok := f[id]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

func TestAdditionChecker(t *testing.T) {
	tests := []struct {
		name   string
		answer map[string]any
		want   bool
	}{
		{"correct number", map[string]any{"question": "5 + 3 = ?", "answer": float64(8)}, true},
		{"correct string", map[string]any{"question": "5 + 3 = ?", "answer": "8"}, true},
		{"wrong", map[string]any{"question": "5 + 3 = ?", "answer": float64(9)}, false},
		{"unparseable question", map[string]any{"question": "five plus three", "answer": float64(8)}, false},
	}
	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Evaluate(context.Background(), nil, "math-addition-example", tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Correct)
			assert.NotEmpty(t, res.Explanation)
		})
	}
}

func TestDragDropChecker(t *testing.T) {
	r := NewRegistry()

	res, err := r.Evaluate(context.Background(), nil, "drag-drop-math-example", map[string]any{"question": "? + ? = 10", "a": float64(4), "b": float64(6)})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	res, err = r.Evaluate(context.Background(), nil, "drag-drop-math-example", map[string]any{"question": "? + ? = 10", "a": float64(4)})
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestEvaluate_SelfReported(t *testing.T) {
	r := NewRegistry()
	plugins := fakePlugins{"tsx-shapes": {PluginID: "tsx-shapes", Enabled: true}}

	res, err := r.Evaluate(context.Background(), plugins, "tsx-shapes", map[string]any{"isCorrect": "true", "correctAnswer": "12"})
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Contains(t, res.Explanation, "12")

	res, err = r.Evaluate(context.Background(), plugins, "tsx-shapes", map[string]any{"value": 3})
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestEvaluate_UnknownOrDisabled(t *testing.T) {
	r := NewRegistry()
	plugins := fakePlugins{"off": {PluginID: "off", Enabled: false}}

	_, err := r.Evaluate(context.Background(), plugins, "missing", map[string]any{"isCorrect": true})
	require.ErrorIs(t, err, ErrPluginNotFound)

	_, err = r.Evaluate(context.Background(), plugins, "off", map[string]any{"isCorrect": true})
	require.ErrorIs(t, err, ErrPluginNotFound)
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("always", func(map[string]any) Result { return Result{Correct: true} })

	res, err := r.Evaluate(context.Background(), nil, "always", map[string]any{})
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

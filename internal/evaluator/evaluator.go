// Package evaluator checks answers to plugin and interactive questions.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Erkezh/studypoint-edu/internal/model"
)

var ErrPluginNotFound = errors.New("plugin not found")

type Result struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Checker grades one answer for a specific plugin.
type Checker func(answer map[string]any) Result

// PluginLookup resolves a manifest id to an installed plugin.
type PluginLookup interface {
	FindPlugin(ctx context.Context, pluginID string) (*model.Plugin, error)
}

// Registry 插件判题注册表
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry returns a registry preloaded with the built-in checkers.
func NewRegistry() *Registry {
	r := &Registry{checkers: map[string]Checker{}}
	r.Register("math-addition-example", checkAddition)
	r.Register("drag-drop-math-example", checkDragDropSum)
	return r
}

func (r *Registry) Register(pluginID string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[pluginID] = c
}

func (r *Registry) checker(pluginID string) (Checker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[pluginID]
	return c, ok
}

// Evaluate grades answer for pluginID, resolving the plugin through plugins
// (usually bound to the caller's transaction). With a nil lookup only
// registered checkers and self-reported verdicts are accepted. Plugins
// without a server-side checker fall back to the verdict the plugin
// reported itself (isCorrect).
func (r *Registry) Evaluate(ctx context.Context, plugins PluginLookup, pluginID string, answer map[string]any) (Result, error) {
	c, registered := r.checker(pluginID)

	if plugins != nil {
		p, err := plugins.FindPlugin(ctx, pluginID)
		if err != nil && !errors.Is(err, ErrPluginNotFound) {
			return Result{}, err
		}
		if p == nil || !p.Enabled {
			if !registered {
				return Result{}, fmt.Errorf("%w: %s", ErrPluginNotFound, pluginID)
			}
		}
	} else if !registered {
		if _, ok := selfReported(answer); !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrPluginNotFound, pluginID)
		}
	}

	if registered {
		return c(answer), nil
	}
	if correct, ok := selfReported(answer); ok {
		return reportedResult(correct, answer), nil
	}
	return Result{Correct: false, Explanation: "no checker available for this plugin"}, nil
}

func selfReported(answer map[string]any) (bool, bool) {
	for _, key := range []string{"isCorrect", "is_correct", "correct"} {
		raw, ok := answer[key]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case bool:
			return v, true
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			return s == "true" || s == "1" || s == "yes", true
		case float64:
			return v != 0, true
		case int:
			return v != 0, true
		}
		return false, true
	}
	return false, false
}

func reportedResult(correct bool, answer map[string]any) Result {
	expected := firstString(answer, "correctAnswer", "correct_answer")
	given := firstString(answer, "userAnswer", "user_answer")
	if correct {
		return Result{Correct: true, Explanation: fmt.Sprintf("Correct! The answer is %s", expected)}
	}
	return Result{Correct: false, Explanation: fmt.Sprintf("Incorrect. Your answer: %s. Correct answer: %s", given, expected)}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

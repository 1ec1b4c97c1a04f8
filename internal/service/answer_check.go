package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/Erkezh/studypoint-edu/internal/util"
)

// ValidateAnswer checks the submitted answer has the shape its question type
// expects.
func ValidateAnswer(qtype model.QuestionType, submitted map[string]any) error {
	if submitted == nil {
		return fmt.Errorf("%w: submittedAnswer must be an object", util.ErrValidation)
	}

	switch qtype {
	case model.QuestionMCQ:
		if _, ok := submitted["choice"].(string); !ok {
			return fmt.Errorf("%w: MCQ submittedAnswer.choice must be a string", util.ErrValidation)
		}
	case model.QuestionMultiSelect:
		if _, ok := stringList(submitted["choices"]); !ok {
			return fmt.Errorf("%w: MULTI_SELECT submittedAnswer.choices must be a list of strings", util.ErrValidation)
		}
	case model.QuestionNumeric:
		if _, ok := number(submitted["value"]); !ok {
			return fmt.Errorf("%w: NUMERIC submittedAnswer.value must be a number", util.ErrValidation)
		}
	case model.QuestionText:
		if _, ok := submitted["text"].(string); !ok {
			return fmt.Errorf("%w: TEXT submittedAnswer.text must be a string", util.ErrValidation)
		}
	case model.QuestionInteractive, model.QuestionPlugin:
		// 原样交给插件判题
	default:
		return fmt.Errorf("%w: unsupported question type %q", util.ErrValidation, qtype)
	}
	return nil
}

// IsCorrect compares a validated answer with the stored correct answer.
// Plugin and interactive questions are graded by the evaluator instead.
func IsCorrect(qtype model.QuestionType, data, correct, submitted map[string]any) bool {
	switch qtype {
	case model.QuestionMCQ:
		return mcqMatches(data, correct["choice"], submitted["choice"])
	case model.QuestionMultiSelect:
		got, _ := stringList(submitted["choices"])
		want, _ := stringList(correct["choices"])
		return sameSet(got, want)
	case model.QuestionNumeric:
		got, ok1 := number(submitted["value"])
		want, ok2 := number(correct["value"])
		if !ok1 || !ok2 {
			return false
		}
		tol, _ := number(data["tolerance"])
		return math.Abs(got-want) <= math.Abs(tol)
	case model.QuestionText:
		got, _ := submitted["text"].(string)
		want, _ := correct["text"].(string)
		return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
	}
	return false
}

// mcqMatches accepts the choice value or its index. Historical questions
// store the correct choice in either form, so both sides are normalised
// through data.choices (or data.options).
//
// TODO: migrate stored MCQ answers to choice values and drop the index path.
func mcqMatches(data map[string]any, correct, submitted any) bool {
	if correct == nil || submitted == nil {
		return false
	}
	want := strings.TrimSpace(fmt.Sprint(correct))
	got := strings.TrimSpace(fmt.Sprint(submitted))
	if got == want {
		return true
	}

	choices := mcqChoices(data)
	if v, ok := choiceAt(choices, want); ok && v == got {
		return true
	}
	if v, ok := choiceAt(choices, got); ok && v == want {
		return true
	}
	for idx, c := range choices {
		if c == got && strconv.Itoa(idx) == want {
			return true
		}
	}
	return false
}

func mcqChoices(data map[string]any) []string {
	raw, ok := data["choices"].([]any)
	if !ok {
		raw, _ = data["options"].([]any)
	}
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		out = append(out, choiceLabel(c))
	}
	return out
}

func choiceLabel(c any) string {
	if m, ok := c.(map[string]any); ok {
		for _, k := range []string{"value", "label", "text"} {
			if v, ok := m[k]; ok && v != nil && fmt.Sprint(v) != "" {
				return strings.TrimSpace(fmt.Sprint(v))
			}
		}
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(c))
}

func choiceAt(choices []string, idx string) (string, bool) {
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(choices) {
		return "", false
	}
	return choices[i], true
}

func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, s := range a {
		as[s] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, s := range b {
		bs[s] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if _, ok := bs[s]; !ok {
			return false
		}
	}
	return true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

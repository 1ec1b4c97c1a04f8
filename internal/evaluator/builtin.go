package evaluator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	additionQuestion = regexp.MustCompile(`^\s*(\d+)\s*\+\s*(\d+)\s*=\s*\?`)
	trailingSum      = regexp.MustCompile(`=\s*(\d+)\s*$`)
)

// checkAddition: answer {question: "a + b = ?", answer: n}
func checkAddition(answer map[string]any) Result {
	question, _ := answer["question"].(string)
	m := additionQuestion.FindStringSubmatch(question)
	if m == nil {
		return Result{Correct: false, Explanation: "could not parse the question"}
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	want := a + b

	got, ok := asInt(answer["answer"])
	if ok && got == want {
		return Result{Correct: true, Explanation: fmt.Sprintf("Correct! %d + %d = %d", a, b, want)}
	}
	return Result{
		Correct:     false,
		Explanation: fmt.Sprintf("Incorrect. %d + %d = %d. You entered: %v", a, b, want, answer["answer"]),
	}
}

// checkDragDropSum: answer {question: "? + ? = Z", a: x, b: y}
func checkDragDropSum(answer map[string]any) Result {
	question, _ := answer["question"].(string)
	m := trailingSum.FindStringSubmatch(strings.TrimSpace(question))
	if m == nil {
		return Result{Correct: false, Explanation: fmt.Sprintf("could not find the expected sum in %q", question)}
	}
	want, _ := strconv.Atoi(m[1])

	a, okA := asInt(answer["a"])
	b, okB := asInt(answer["b"])
	if !okA || !okB {
		return Result{Correct: false, Explanation: "both addends are required"}
	}
	if a+b == want {
		return Result{Correct: true, Explanation: fmt.Sprintf("Correct! %d + %d = %d", a, b, want)}
	}
	return Result{
		Correct:     false,
		Explanation: fmt.Sprintf("Incorrect. The sum should be %d, you gave %d + %d = %d", want, a, b, a+b),
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

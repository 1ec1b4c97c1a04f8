// Package generator runs skill question generators.
//
// A generator is an expr program evaluated against a fixed environment of
// pure helpers plus the skill metadata. It has no access to the host,
// is bounded in size, and is abandoned once its deadline passes.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/model"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrCompile = errors.New("generator: compile failed")
	ErrRun     = errors.New("generator: execution failed")
	ErrTimeout = errors.New("generator: timed out")
	ErrResult  = errors.New("generator: invalid result")
)

const (
	DefaultTimeout  = 500 * time.Millisecond
	DefaultMaxNodes = 2000
)

type Option func(*Interpreter)

func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) { i.timeout.Store(int64(d)) }
}

func WithMaxNodes(n uint) Option {
	return func(i *Interpreter) { i.maxNodes = n }
}

// WithRand fixes the random source, mostly for tests.
func WithRand(newRand func() *rand.Rand) Option {
	return func(i *Interpreter) { i.newRand = newRand }
}

// WithFunction exposes an extra helper to programs.
func WithFunction(name string, fn any) Option {
	return func(i *Interpreter) { i.extra[name] = fn }
}

// Interpreter 生成器解释器，已编译的程序按源码缓存
type Interpreter struct {
	timeout  atomic.Int64
	maxNodes uint
	newRand  func() *rand.Rand
	extra    map[string]any

	programs sync.Map // source -> *vm.Program
}

func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		maxNodes: DefaultMaxNodes,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		extra: map[string]any{},
	}
	i.timeout.Store(int64(DefaultTimeout))
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetTimeout changes the execution deadline for subsequent runs.
func (i *Interpreter) SetTimeout(d time.Duration) {
	if d > 0 {
		i.timeout.Store(int64(d))
	}
}

type result struct {
	Prompt        string         `json:"prompt"`
	Type          string         `json:"type"`
	Data          map[string]any `json:"data"`
	CorrectAnswer map[string]any `json:"correct_answer"`
	Explanation   string         `json:"explanation"`
	Level         int            `json:"level"`
}

// Generate evaluates code with metadata bound to `metadata` and returns the
// produced question.
func (i *Interpreter) Generate(ctx context.Context, code string, metadata map[string]any) (*model.GeneratedQuestion, error) {
	program, err := i.compile(code)
	if err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	env := i.env(i.newRand(), metadata)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(i.timeout.Load()))
	defer cancel()

	type outcome struct {
		out any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		out, err := expr.Run(program, env)
		done <- outcome{out: out, err: err}
	}()

	var res outcome
	select {
	case <-ctx.Done():
		return nil, ErrTimeout
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRun, res.err)
	}

	raw, err := validateResult(res.out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResult, err)
	}

	var r result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResult, err)
	}
	if r.Level == 0 {
		r.Level = 1
	}

	return &model.GeneratedQuestion{
		Type:          model.QuestionType(r.Type),
		Prompt:        r.Prompt,
		Data:          r.Data,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation,
		Level:         r.Level,
	}, nil
}

// Check compiles code without running it.
func (i *Interpreter) Check(code string) error {
	_, err := i.compile(code)
	return err
}

func (i *Interpreter) compile(code string) (*vm.Program, error) {
	if cached, ok := i.programs.Load(code); ok {
		return cached.(*vm.Program), nil
	}

	proto := i.env(rand.New(rand.NewPCG(1, 1)), map[string]any{})
	program, err := expr.Compile(code, expr.Env(proto), expr.MaxNodes(i.maxNodes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	i.programs.Store(code, program)
	return program, nil
}

func (i *Interpreter) env(rng *rand.Rand, metadata map[string]any) map[string]any {
	env := helpers(rng)
	env["metadata"] = metadata
	for name, fn := range i.extra {
		env[name] = fn
	}
	return env
}

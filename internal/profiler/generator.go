package profiler

import (
	"context"
	"errors"
)

// ErrNoContent is returned when the generation service answers without text.
var ErrNoContent = errors.New("profiler: no content generated")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of the conversation sent to a Generator.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the text-generation collaborator. Its output carries no shape
// guarantee and always goes through the contract parser.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt string, messages []Message) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	return f(ctx, systemPrompt, messages)
}

// Middleware decorates a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Wrap applies middlewares left to right: Wrap(g, A, B) == A(B(g)).
func Wrap(inner Generator, mws ...Middleware) Generator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Task names, carried in the context so middlewares and the fake generator
// know which call they are serving.
const (
	TaskProfile    = "profile_analysis"
	TaskCrossRef   = "cross_reference"
	TaskBrainstorm = "venue_brainstorm"
	TaskRank       = "venue_rank"
	TaskCoaching   = "coaching"
)

type ctxKeyTask struct{}

// WithTask attaches a task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, ctxKeyTask{}, task)
}

// TaskFrom returns the task name stored in the context.
func TaskFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTask{}).(string); ok {
		return v
	}
	return "unknown"
}

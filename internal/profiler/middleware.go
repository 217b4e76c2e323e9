package profiler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WithLogging logs request size, latency and errors per task. A nil logger
// uses the global one.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next Generator) Generator {
		return GeneratorFunc(func(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
			log := logger
			if log == nil {
				log = zap.L()
			}
			size := len(systemPrompt)
			for _, m := range messages {
				size += len(m.Content)
			}
			start := time.Now()
			out, err := next.Generate(ctx, systemPrompt, messages)
			fields := []zap.Field{
				zap.String("task", TaskFrom(ctx)),
				zap.Int("request_bytes", size),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				log.Error("generator call failed", append(fields, zap.Error(err))...)
				return out, err
			}
			log.Info("generator call", append(fields, zap.Int("response_bytes", len(out)))...)
			return out, nil
		})
	}
}

// WithTimeout bounds every call. A non-positive d disables the bound.
func WithTimeout(d time.Duration) Middleware {
	return func(next Generator) Generator {
		if d <= 0 {
			return next
		}
		return GeneratorFunc(func(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Generate(ctx, systemPrompt, messages)
		})
	}
}

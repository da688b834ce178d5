// Package script evaluates Risor expressions against a collector's recorded
// data. Scripts see the query builtins count, result, args, hook_value,
// timeline and units, plus a log object.
package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/hookscope/internal/logging"
)

// Source is the read-only view of recorded data scripts query. An empty
// disc means no discriminator.
type Source interface {
	Count(name, disc string) (int, bool)
	Result(name string, seq int, disc string) (any, bool)
	Args(name string, seq int, disc string) ([]any, bool)
	HookValue(name string, seq int, kind string, slot int, disc string) (any, bool)
	Timeline(name string, slot int, disc string) ([]any, bool)
	Units() []string
}

// Runtime evaluates Risor source with query builtins bound to a Source.
type Runtime struct {
	src    Source
	logger *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger behind the script log object.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// NewRuntime creates a Runtime reading from src.
func NewRuntime(src Source, opts ...RuntimeOption) *Runtime {
	r := &Runtime{src: src, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eval runs source and returns the value of its last expression converted
// to Go. Risor ints become int64.
func (r *Runtime) Eval(ctx context.Context, source string, extraGlobals map[string]any) (any, error) {
	var opts []risor.Option
	for name, val := range r.buildGlobals(extraGlobals) {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, fmt.Errorf("script: eval: %w", err)
	}
	if result == nil || result == object.Nil {
		return nil, nil
	}
	return result.Interface(), nil
}

func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"count":      makeCountFn(r.src),
		"result":     makeResultFn(r.src),
		"args":       makeArgsFn(r.src),
		"hook_value": makeHookValueFn(r.src),
		"timeline":   makeTimelineFn(r.src),
		"units":      makeUnitsFn(r.src),
		"log":        mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("script: proxy error: %v", err))
	}
	return p
}

// logObject provides log.info/warn methods for scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler on a new goroutine and returns immediately.
//
// The handler receives a fresh background context that keeps the ctxlog
// logger of ctx but not its deadline or cancellation, so the task survives
// the request that started it. Returned errors and panics are logged with
// the task name; nothing is reported to the caller.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		logger := ctxlog.From(newCtx)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async task",
					"task", name,
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger.Error("error in async task", "task", name, "error", err)
		}
	}()
}

func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}

package middleware

import (
	"context"

	"storefront/internal/app/commands"
	"storefront/internal/app/outbox"
)

// OutboxFlush flushes box after every command, rejected ones included.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if flushErr := box.Flush(ctx); flushErr != nil && err == nil {
				return nil, flushErr
			}
			return res, err
		})
	}
}

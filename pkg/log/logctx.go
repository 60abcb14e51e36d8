// log хранит request-scoped *slog.Logger в context.Context.
// Логгер кладёт HTTP-мидлвар Logging, а сервисный слой и хранилища
// достают его через From, чтобы все записи одного запроса несли request_id.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With — сокращение для From(ctx).With(args...), удобно в начале операции:
//
//	lg := log.With(ctx, "op", op, "id", id)
func With(ctx context.Context, args ...any) *slog.Logger {
	return From(ctx).With(args...)
}

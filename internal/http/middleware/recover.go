package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/go-user-directory/internal/errors"
	logctx "github.com/pribylovaa/go-user-directory/pkg/log"
)

// Recover перехватывает panic, конвертирует в 500 "Server error" и пишет унифицированный ответ.
// Детали паники не утекают на клиент.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
						)
					apierrors.WriteError(w, r, apierrors.ActionAny, fmt.Errorf("panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

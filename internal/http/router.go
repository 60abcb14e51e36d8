package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-user-directory/internal/http/handlers"
	"github.com/pribylovaa/go-user-directory/internal/http/middleware"
)

// BasePath — префикс REST-ресурса пользователей.
const BasePath = "/api/users"

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	CORSOrigin string

	// Registerer/Gatherer — реестр метрик; nil -> глобальный реестр prometheus.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Ready — проверка готовности для /healthz; nil -> всегда готов.
	Ready func(ctx context.Context) error
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(users handlers.UsersService, opts Options) http.Handler {
	root := chi.NewRouter()

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),                           // безопасно ловим паники
		middleware.RequestID(),                         // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),                // кладём request-scoped логгер в контекст и логируем
		middleware.NewMetrics(registerer).Middleware(), // счётчики/латентность по шаблону маршрута
		middleware.CORS(opts.CORSOrigin),               // браузерный клиент с другого origin
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	registerOps(root, opts.Ready, gatherer)

	h := handlers.New(users)
	root.Route(BasePath, func(r chi.Router) {
		registerRoutes(r, h)
	})

	return root
}

// registerRoutes — единая точка регистрации REST-эндпойнтов пользователей.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Get("/{id}", h.GetUser)
	r.Put("/{id}", h.UpdateUser)
	r.Delete("/{id}", h.DeleteUser)
}

// registerOps — liveness/readiness/metrics.
func registerOps(r chi.Router, ready func(ctx context.Context) error, gatherer prometheus.Gatherer) {
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

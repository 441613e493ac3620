package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-movie-tracker/internal/service"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/handlers"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.AuthBearer(svc),      // валидируем Bearer-токен и кладём актора в контекст
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/register", h.RegisterAccount)
	r.Post("/auth/login", h.LoginAccount)
	r.Post("/auth/refresh", h.RefreshToken)
	r.Post("/auth/revoke", h.RevokeToken)
	r.Post("/auth/google", h.GoogleLogin)
	r.Post("/auth/password/change", h.ChangePassword)
	r.Get("/auth/me", h.CurrentAccount)

	// movies
	r.Get("/movies", h.ListMovies)
	r.Get("/movies/my_movies", h.ListMovies)
	r.Post("/movies", h.CreateMovie)
	r.Get("/movies/{id}", h.MovieByID)
	r.Put("/movies/{id}", h.ReplaceMovie)
	r.Patch("/movies/{id}", h.UpdateMovie)
	r.Delete("/movies/{id}", h.DeleteMovie)
	r.Post("/movies/{id}/poster/presign", h.PosterPresign)
	r.Post("/movies/{id}/poster/confirm", h.PosterConfirm)

	// users
	r.Get("/users", h.ListAccounts)
	r.Get("/users/{id}", h.AccountByID)
	r.Patch("/users/{id}", h.UpdateAccount)
	r.Delete("/users/{id}", h.DeleteAccount)
}

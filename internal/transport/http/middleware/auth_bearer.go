package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/transport/httperr"
)

// Actor — аутентифицированный пользователь запроса.
type Actor struct {
	ID    uuid.UUID
	Email string
}

// TokenValidator проверяет access-токен и возвращает личность его владельца.
// Контракт реализует сервисный слой (service.ValidateToken).
type TokenValidator interface {
	ValidateToken(ctx context.Context, accessToken string) (uuid.UUID, string, error)
}

// AuthBearer извлекает Bearer-токен из Authorization, валидирует его
// и кладёт актора в контекст по ключу CtxActor.
//
// Отсутствие заголовка — не ошибка: запрос идёт дальше анонимным, решение
// о доступе принимает политика сервисного слоя. Предъявленный, но
// невалидный токен — всегда 401, анонимом такой запрос не становится.
func AuthBearer(tv TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, email, err := tv.ValidateToken(r.Context(), token)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxActor, Actor{ID: uid, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom достаёт актора из контекста; ok=false для анонимного запроса.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(CtxActor).(Actor)
	return actor, ok
}

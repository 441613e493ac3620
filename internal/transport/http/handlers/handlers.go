package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/service"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/middleware"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errBadRequest — локальная ошибка парсинга -> 400/invalid_argument.
func errBadRequest() error {
	return fmt.Errorf("bad request: %w", service.ErrInvalidArgument)
}

// actorID возвращает ID актора либо uuid.Nil для анонимного запроса;
// решение о доступе всегда за сервисным слоем.
func actorID(r *http.Request) uuid.UUID {
	if actor, ok := middleware.ActorFrom(r.Context()); ok {
		return actor.ID
	}

	return uuid.Nil
}

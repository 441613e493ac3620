// httperr стандартизирует ответы об ошибках HTTP-слоя movie-tracker.
// На вход он принимает ошибку сервисного слоя, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: сигнальные ошибки пакета service.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-movie-tracker/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// Field — имя поля для ошибок валидации (пустое для остальных).
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус
// и унифицированный ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - *service.ValidationError -> 400 c заполненным field и причиной;
//   - ErrInvalidCredentials / ErrInvalidToken / ErrTokenExpired /
//     ErrTokenRevoked / ErrUnauthenticated -> 401;
//   - ErrPermissionDenied -> 403;
//   - ErrNotFound -> 404;
//   - ErrUsernameTaken / ErrEmailTaken -> 409;
//   - ErrInvalidArgument (без поля) -> 400;
//   - ErrUnimplemented -> 501;
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504;
//   - прочее -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, envelope("internal", "internal error", "")
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, envelope("invalid_argument", verr.Reason, verr.Field)
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, envelope("invalid_credentials", "invalid credentials", "")
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, envelope("token_expired", "token expired", "")
	case errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, envelope("token_revoked", "token revoked", "")
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, envelope("invalid_token", "invalid token", "")
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, envelope("unauthenticated", "authentication required", "")
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, envelope("permission_denied", "permission denied", "")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, envelope("not_found", "not found", "")
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, envelope("username_taken", "username already taken", "")
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, envelope("email_taken", "email already taken", "")
	case errors.Is(err, service.ErrRefreshTokenCollision):
		return http.StatusConflict, envelope("conflict", "try again", "")
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, envelope("invalid_argument", "invalid argument", "")
	case errors.Is(err, service.ErrUnimplemented):
		return http.StatusNotImplemented, envelope("unimplemented", "not implemented", "")
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, envelope("canceled", "canceled", "")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, envelope("deadline_exceeded", "deadline exceeded", "")
	default:
		return http.StatusInternalServerError, envelope("internal", "internal error", "")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func envelope(code, msg, field string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg, Field: field}}
}

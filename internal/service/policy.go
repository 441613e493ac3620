package service

import (
	"fmt"

	"github.com/pribylovaa/go-movie-tracker/internal/authz"
)

// decisionErr переводит отказ политики доступа в сервисную ошибку.
// Allow возвращает nil.
func decisionErr(op string, d authz.Decision) error {
	switch d {
	case authz.Allow:
		return nil
	case authz.DenyUnauthenticated:
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	case authz.DenyNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}
}

package httperr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-movie-tracker/internal/service"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"token_expired", service.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"token_revoked", service.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked"},
		{"invalid_token", service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"permission_denied", service.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"not_found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"username_taken", service.ErrUsernameTaken, http.StatusConflict, "username_taken"},
		{"email_taken", service.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{"refresh_collision", service.ErrRefreshTokenCollision, http.StatusConflict, "conflict"},
		{"invalid_argument", service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"unimplemented", service.ErrUnimplemented, http.StatusNotImplemented, "unimplemented"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("service.accounts.LoginAccount: %w", service.ErrInvalidCredentials)

	gotStatus, resp := ToHTTP(err)
	require.Equal(t, http.StatusUnauthorized, gotStatus)
	require.Equal(t, "invalid_credentials", resp.Error.Code)
}

func TestToHTTP_ValidationError_CarriesField(t *testing.T) {
	err := &service.ValidationError{Field: "movie_rating", Reason: "must be between 0.00 and 9.99"}

	gotStatus, resp := ToHTTP(err)
	require.Equal(t, http.StatusBadRequest, gotStatus)
	require.Equal(t, "invalid_argument", resp.Error.Code)
	require.Equal(t, "movie_rating", resp.Error.Field)
	require.Equal(t, "must be between 0.00 and 9.99", resp.Error.Message)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_PropagatesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()

	WriteError(rec, req, service.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "not_found", resp.Error.Code)
	require.Equal(t, "req-123", resp.Error.RequestID)
}

func TestWriteError_NoRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, service.ErrPermissionDenied)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Error.RequestID)
}

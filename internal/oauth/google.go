// Package oauth реализует обмен authorization code у сторонних провайдеров.
// Сервисный слой видит только интерфейс service.OAuthProvider.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pribylovaa/go-movie-tracker/internal/config"
	"github.com/pribylovaa/go-movie-tracker/internal/models"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Google обменивает authorization code на подтверждённую идентичность Google.
type Google struct {
	conf        *oauth2.Config
	userinfoURL string
}

// NewGoogle создаёт провайдера из конфигурации.
func NewGoogle(cfg config.GoogleOAuthConfig) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// googleUserinfo — ответ userinfo-эндпойнта (OpenID Connect).
type googleUserinfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange меняет code на токен провайдера и запрашивает профиль пользователя.
// Неподтверждённый email отклоняется: на нём строится привязка к аккаунту.
func (g *Google) Exchange(ctx context.Context, code string) (*models.ExternalIdentity, error) {
	const op = "oauth.google.Exchange"

	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: code exchange: %w", op, err)
	}

	client := g.conf.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: userinfo: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: userinfo status %d", op, resp.StatusCode)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: decode userinfo: %w", op, err)
	}

	if info.Sub == "" {
		return nil, fmt.Errorf("%s: empty subject", op)
	}

	if !info.EmailVerified {
		return nil, fmt.Errorf("%s: email is not verified by provider", op)
	}

	return &models.ExternalIdentity{
		Provider: "google",
		Subject:  info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}

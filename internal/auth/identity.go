package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/morgana-orum/portal-api/internal/models"
	"gorm.io/gorm"
)

// CurrentUser resolves the session cookie into a user record.
//
// Absent cookie, bad signature, expired token, or unknown email all yield
// (nil, nil): the caller is anonymous, not in error. A non-nil error means
// the store itself failed; read paths may still downgrade to anonymous.
func (h *AuthHandler) CurrentUser(ctx context.Context, cookieHeader string) (*models.User, error) {
	tokenString := sessionToken(cookieHeader)
	if tokenString == "" {
		return nil, nil
	}

	email, err := h.parseToken(tokenString)
	if err != nil {
		return nil, nil
	}

	var user models.User
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Authorize resolves the session like CurrentUser but fails closed: an
// anonymous caller gets a 401 and a store failure a 500.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (*models.User, error) {
	user, err := h.CurrentUser(ctx, cookieHeader)
	if err != nil {
		return nil, huma.Error500InternalServerError("Session lookup failed")
	}
	if user == nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	return user, nil
}

// sessionToken extracts the auth_token cookie value from a raw Cookie header.
func sessionToken(cookieHeader string) string {
	if cookieHeader == "" {
		return ""
	}
	r := http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return ""
	}
	return cookie.Value
}

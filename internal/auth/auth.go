package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/morgana-orum/portal-api/internal/config"
	"github.com/morgana-orum/portal-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

// AuthHandler issues the session cookie and resolves it back to users.
type AuthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: db}
}

// AuthInput carries the session cookie into protected huma operations.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
}

type SignupInput struct {
	Body struct {
		Email               string `json:"email" format:"email" doc:"Unique account email"`
		Password            string `json:"password" minLength:"8"`
		Name                string `json:"name"`
		Surname             string `json:"surname"`
		Department          string `json:"department,omitempty"`
		DegreeCourse        string `json:"degree_course,omitempty"`
		MatriculationNumber string `json:"matriculation_number,omitempty"`
		Newsletter          bool   `json:"newsletter,omitempty"`
	}
}

type SessionOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  models.Role `json:"role"`
	}
}

func (h *AuthHandler) HandleSignup(ctx context.Context, input *SignupInput) (*SessionOutput, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to process credentials")
	}

	user := models.User{
		Email:               input.Body.Email,
		PasswordHash:        string(hash),
		Name:                input.Body.Name,
		Surname:             input.Body.Surname,
		Role:                models.RoleUser,
		Department:          input.Body.Department,
		DegreeCourse:        input.Body.DegreeCourse,
		MatriculationNumber: input.Body.MatriculationNumber,
		Newsletter:          input.Body.Newsletter,
	}

	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, huma.Error409Conflict("An account with this email already exists")
		}
		return nil, huma.Error500InternalServerError("Failed to create account")
	}

	return h.sessionOutput(&user)
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	var user models.User
	if err := h.db.WithContext(ctx).Where("email = ?", input.Body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error401Unauthorized("Invalid email or password")
		}
		return nil, huma.Error500InternalServerError("Login failed")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}

	return h.sessionOutput(&user)
}

func (h *AuthHandler) sessionOutput(user *models.User) (*SessionOutput, error) {
	token, err := h.GenerateToken(user.Email)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	out := &SessionOutput{
		SetCookie: http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Expires:  time.Now().Add(TokenDuration),
			HttpOnly: true,
			Path:     "/",
		},
	}
	out.Body.Email = user.Email
	out.Body.Name = user.Name
	out.Body.Role = user.Role
	return out, nil
}

type MeOutput struct {
	Body struct {
		Email       string             `json:"email"`
		Name        string             `json:"name"`
		Surname     string             `json:"surname"`
		Role        models.Role        `json:"role"`
		Association models.Association `json:"association"`
		Department  string             `json:"department"`
		Newsletter  bool               `json:"newsletter"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	user, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	out := &MeOutput{}
	out.Body.Email = user.Email
	out.Body.Name = user.Name
	out.Body.Surname = user.Surname
	out.Body.Role = user.Role
	out.Body.Association = user.Association
	out.Body.Department = user.Department
	out.Body.Newsletter = user.Newsletter
	return out, nil
}

// GenerateToken signs a session token whose subject is the account email.
func (h *AuthHandler) GenerateToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// parseToken verifies the signed token and returns the email subject.
func (h *AuthHandler) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return "", fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	email, err := claims.GetSubject()
	if err != nil || email == "" {
		return "", fmt.Errorf("invalid token subject")
	}
	return email, nil
}

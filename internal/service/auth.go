package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// AuthService signs in roster members and validates access tokens.
// Access tokens are long-lived (field reps stay signed in through a
// working day); there is no refresh token flow.
type AuthService struct {
	store     port.AuthStore
	config    *ConfigService
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(store port.AuthStore, config *ConfigService, jwtSecret []byte, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:     store,
		config:    config,
		jwtSecret: jwtSecret,
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// JWTClaims are the custom claims carried by access tokens.
type JWTClaims struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Manager bool   `json:"manager"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email and password are required"}
	}

	// The roster is the source of identity; credentials only hold the hash.
	cfg := s.config.Get(ctx)
	msl := cfg.MSLByEmail(email)
	if msl == nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	cred, err := s.store.GetCredentialByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if cred == nil {
		s.logger.Warn("login: roster member has no stored credential",
			zap.String("msl_id", msl.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt", zap.String("msl_id", msl.ID))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	token, err := s.signAccessToken(msl)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("msl logged in", zap.String("msl_id", msl.ID))

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		MSL:         *msl,
	}, nil
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout has nothing server-side to revoke; tokens simply expire.
// Kept as an endpoint so clients can log the event.
func (s *AuthService) Logout(ctx context.Context, mslID string) error {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	s.logger.Info("msl logged out", zap.String("msl_id", mslID))
	return nil
}

// ============================================================
// ValidateAccessToken — used by middleware
// ============================================================

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

func (s *AuthService) signAccessToken(msl *domain.MSL) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:     msl.ID,
		Name:    msl.Name,
		Manager: msl.Manager,
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "calllog-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

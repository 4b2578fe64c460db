package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/Beamwelly/CRM-Application-sub001/internal"
	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/common/validation"
	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrCredentialsNotFound = stderrors.New("credentials not found")

// Service is the main auth service with dependencies
type Service struct {
	creds      CredentialRepository
	principals PrincipalLoader
	tokens     TokenGenerator
	sessions   SessionRevoker
	events     events.Publisher
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(creds CredentialRepository, principals PrincipalLoader, tokenGen TokenGenerator, sessions SessionRevoker, pub events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		creds:      creds,
		principals: principals,
		tokens:     tokenGen,
		sessions:   sessions,
		events:     pub,
		logger:     logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and opens a new session.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if appErr := validation.Struct(dto); appErr != nil {
		return AuthTokens{}, appErr
	}

	creds, err := s.creds.GetCredentials(ctx, dto.Email)
	if err != nil {
		if !stderrors.Is(err, ErrCredentialsNotFound) {
			s.logger.Error("failed to load credentials", "error", err)
		}
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, errors.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}

	tokens, err := s.issue(creds.UserID, creds.Email, uuid.NewString())
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user logged in", "user_id", creds.UserID, "session_id", tokens.SessionID)
	return tokens, nil
}

// RefreshTokens rotates both tokens inside the same session.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, TokenRefresh)
	if err != nil {
		return AuthTokens{}, err
	}
	if s.sessions != nil && s.sessions.Revoked(claims.SessionID()) {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	if _, err := s.principals.LoadPrincipal(ctx, claims.UserID); err != nil {
		return AuthTokens{}, err
	}

	return s.issue(claims.UserID, claims.Email, claims.SessionID())
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString, TokenAccess)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil && s.sessions.Revoked(claims.SessionID()) {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

// Authorize resolves a bearer token to the principal for this request.
func (s *Service) Authorize(ctx context.Context, tokenString string) (*access.Principal, *Claims, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.principals.LoadPrincipal(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return p, claims, nil
}

// Logout ends the session of claims. Tokens of that session are refused from
// now on, and subscribers drop any state kept for it.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return errors.ErrUnauthenticated
	}
	if s.sessions != nil {
		s.sessions.Revoke(claims.SessionID(), time.Now().Add(s.tokens.RefreshTTL()))
	}
	if s.events != nil {
		if err := s.events.PublishSync(ctx, events.NewSessionEndedEvent(claims.SessionID(), claims.UserID)); err != nil {
			s.logger.Warn("session ended handler failed", "error", err, "session_id", claims.SessionID())
		}
	}
	s.logger.Info("user logged out", "user_id", claims.UserID, "session_id", claims.SessionID())
	return nil
}

func (s *Service) issue(userID, email, sessionID string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, email, sessionID)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(userID, email, sessionID)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to issue token", err)
	}
	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		SessionID:    sessionID,
	}, nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID, email, sessionID string) (string, error) {
	return j.sign(userID, email, sessionID, TokenAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(userID, email, sessionID string) (string, error) {
	return j.sign(userID, email, sessionID, TokenRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) AccessTTL() time.Duration  { return j.AccessTokenTTL }
func (j *JWTTokenGenerator) RefreshTTL() time.Duration { return j.RefreshTokenTTL }

func (j *JWTTokenGenerator) sign(userID, email, sessionID string, kind TokenKind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return tokenString, nil
}

// ValidateToken checks signature, expiry and kind. Access and refresh tokens
// use different secrets, so one can never stand in for the other.
func (j *JWTTokenGenerator) ValidateToken(tokenString string, kind TokenKind) (*Claims, error) {
	secret := j.AccessTokenSecret
	if kind == TokenRefresh {
		secret = j.RefreshTokenSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind || claims.UserID == "" || claims.ID == "" {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

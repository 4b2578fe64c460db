package auth

import (
	"context"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims carries the user id and the login session. The session id is the
// JWT id and is shared by every token issued for the same login.
type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) SessionID() string {
	return c.ID
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	SessionID    string `json:"session_id"`
}

// Credentials is what login needs from the account store.
type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
	IsActive     bool
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, email, sessionID string) (string, error)
	GenerateRefreshToken(userID, email, sessionID string) (string, error)
	ValidateToken(tokenString string, kind TokenKind) (*Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type CredentialRepository interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
}

// PrincipalLoader reads the caller's current role and permissions.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*access.Principal, error)
}

// SessionRevoker remembers logged out sessions until their tokens expire.
type SessionRevoker interface {
	Revoke(sessionID string, until time.Time)
	Revoked(sessionID string) bool
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

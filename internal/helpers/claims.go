package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type SessionClaims struct {
	UserID    int64  `json:"uid"`
	OpenID    string `json:"openid"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) IsAdmin() bool {
	return c.Role == "admin"
}

func (c *SessionClaims) IsOwner(userID int64) bool {
	return c.UserID == userID
}

// TokenPair is one access token and its paired refresh token.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// MintTokenPair signs a fresh access/refresh pair for the user.
func MintTokenPair(secret string, userID int64, openID, role string, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	now := time.Now()
	pair := &TokenPair{
		ExpiresAt:        now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
	}

	access, err := signToken(secret, userID, openID, role, TokenTypeAccess, now, pair.ExpiresAt)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(secret, userID, openID, role, TokenTypeRefresh, now, pair.RefreshExpiresAt)
	if err != nil {
		return nil, err
	}

	pair.AccessToken = access
	pair.RefreshToken = refresh
	return pair, nil
}

func signToken(secret string, userID int64, openID, role, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		UserID:    userID,
		OpenID:    openID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			// A fresh jti keeps two same-second mints distinct.
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "parlor-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, requiring the given type.
func ValidateToken(secret, tokenStr, wantType string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("expected %s token, got %s", wantType, claims.TokenType)
	}
	return claims, nil
}

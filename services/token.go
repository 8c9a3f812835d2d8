package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Cookie names carrying the session tokens.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Token lifetimes mirror the cookie max-ages set by the auth handlers.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 24 * time.Hour
)

// TokenService issues and validates the access/refresh token pair. Refresh
// tokens carry a JTI so individual tokens can be revoked on logout.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// SessionClaims is the payload shared by both token types. Type
// distinguishes access from refresh so one cannot stand in for the other.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Type   string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *TokenService) issue(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssueAccessToken creates a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, "access", AccessTokenTTL)
}

// IssueRefreshToken creates a refresh token with a unique JTI.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, "refresh", RefreshTokenTTL)
}

// Parse validates signature and expiry and checks the token is of the
// expected type.
func (s *TokenService) Parse(tokenString, expectedType string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Type != expectedType {
		return nil, fmt.Errorf("unexpected token type %q", claims.Type)
	}
	return claims, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash against a login attempt.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/7FyD/travel-manager-api/database"
	"github.com/7FyD/travel-manager-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserStore abstracts the auth persistence so handler tests can run against
// an in-memory fake.
type UserStore interface {
	CreateUser(u *database.User) error
	GetUserByEmail(email string) (*database.User, error)
	GetUserByID(id string) (*database.User, error)
	RevokeToken(jti string, expiresAt time.Time) error
	IsTokenRevoked(jti string) (bool, error)
}

// dbUserStore is the Postgres-backed store used in production.
type dbUserStore struct{}

func NewDBUserStore() UserStore { return dbUserStore{} }

func (dbUserStore) CreateUser(u *database.User) error { return database.CreateUser(u) }

func (dbUserStore) GetUserByEmail(e string) (*database.User, error) {
	return database.GetUserByEmail(e)
}

func (dbUserStore) GetUserByID(id string) (*database.User, error) {
	return database.GetUserByID(id)
}

func (dbUserStore) RevokeToken(jti string, exp time.Time) error {
	return database.RevokeToken(jti, exp)
}

func (dbUserStore) IsTokenRevoked(jti string) (bool, error) {
	return database.IsTokenRevoked(jti)
}

// AuthHandler implements the cookie-based session endpoints.
type AuthHandler struct {
	Users  UserStore
	Tokens *services.TokenService
	// Secure marks the session cookies Secure; off for local dev.
	Secure bool
}

func NewAuthHandler(users UserStore, tokens *services.TokenService, secure bool) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Secure: secure}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := &database.User{
		ID:           uuid.New().String(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}

	if err := h.Users.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already in use"})
			return
		}
		log.Printf("❌ Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

// Login handles POST /auth/login: verifies credentials and sets both session
// cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.Users.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if !services.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	access, err := h.Tokens.IssueAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	refresh, err := h.Tokens.IssueRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	h.setSessionCookie(c, services.AccessCookie, access, int(services.AccessTokenTTL.Seconds()))
	h.setSessionCookie(c, services.RefreshCookie, refresh, int(services.RefreshTokenTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"user":   userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
		"detail": "Login successful",
	})
}

// Refresh handles POST /auth/refresh: exchanges a valid refresh cookie for a
// fresh access cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(services.RefreshCookie)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Refresh token not found"})
		return
	}

	claims, err := h.Tokens.Parse(raw, "refresh")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid refresh token"})
		return
	}

	revoked, err := h.Users.IsTokenRevoked(claims.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid refresh token"})
		return
	}

	access, err := h.Tokens.IssueAccessToken(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}

	h.setSessionCookie(c, services.AccessCookie, access, int(services.AccessTokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"detail": "Token refreshed successfully"})
}

// Logout handles POST /auth/logout: blacklists the refresh token and clears
// both cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	if raw, err := c.Cookie(services.RefreshCookie); err == nil && raw != "" {
		if claims, err := h.Tokens.Parse(raw, "refresh"); err == nil {
			expiry := time.Now().Add(services.RefreshTokenTTL)
			if claims.ExpiresAt != nil {
				expiry = claims.ExpiresAt.Time
			}
			if err := h.Users.RevokeToken(claims.ID, expiry); err != nil {
				log.Printf("⚠️  Failed to revoke refresh token: %v", err)
			}
		}
	}

	h.clearSessionCookie(c, services.AccessCookie)
	h.clearSessionCookie(c, services.RefreshCookie)
	c.JSON(http.StatusOK, gin.H{"detail": "Successfully logged out"})
}

// CurrentUser handles GET /auth/user for the authenticated session.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID := c.GetString(ContextUserID)
	user, err := h.Users.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// ─── Cookies ──────────────────────────────────────────────────────────────────

func (h *AuthHandler) setSessionCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", h.Secure, true)
}

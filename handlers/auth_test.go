package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/7FyD/travel-manager-api/database"
	"github.com/7FyD/travel-manager-api/services"

	"github.com/gin-gonic/gin"
)

// memoryUserStore backs the auth handlers in tests without Postgres.
type memoryUserStore struct {
	users   map[string]*database.User // keyed by email
	revoked map[string]time.Time
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users:   map[string]*database.User{},
		revoked: map[string]time.Time{},
	}
}

func (s *memoryUserStore) CreateUser(u *database.User) error {
	if _, exists := s.users[u.Email]; exists {
		return fmt.Errorf("duplicate email")
	}
	u.CreatedAt = time.Now()
	s.users[u.Email] = u
	return nil
}

func (s *memoryUserStore) GetUserByEmail(email string) (*database.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *memoryUserStore) GetUserByID(id string) (*database.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryUserStore) RevokeToken(jti string, expiresAt time.Time) error {
	s.revoked[jti] = expiresAt
	return nil
}

func (s *memoryUserStore) IsTokenRevoked(jti string) (bool, error) {
	_, ok := s.revoked[jti]
	return ok, nil
}

func newAuthRouter(store UserStore) (*gin.Engine, *services.TokenService) {
	gin.SetMode(gin.TestMode)
	tokens := services.NewTokenService("test-secret")
	auth := NewAuthHandler(store, tokens, false)

	r := gin.New()
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/refresh", auth.Refresh)
	r.POST("/auth/logout", auth.Logout)
	r.GET("/auth/user", RequireAuth(tokens), auth.CurrentUser)
	return r, tokens
}

func postJSON(r *gin.Engine, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func cookieByName(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

const registerBody = `{"username": "traveler", "email": "traveler@example.com", "password": "supersecret1"}`
const loginBody = `{"email": "traveler@example.com", "password": "supersecret1"}`

func TestRegisterAndLogin(t *testing.T) {
	store := newMemoryUserStore()
	r, _ := newAuthRouter(store)

	w := postJSON(r, "/auth/register", registerBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	var reg map[string]string
	json.Unmarshal(w.Body.Bytes(), &reg)
	if reg["user_id"] == "" {
		t.Error("register response missing user_id")
	}

	w = postJSON(r, "/auth/login", loginBody)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	res := w.Result()
	access := cookieByName(res, services.AccessCookie)
	refresh := cookieByName(res, services.RefreshCookie)
	if access == nil || access.Value == "" {
		t.Fatal("access cookie not set")
	}
	if refresh == nil || refresh.Value == "" {
		t.Fatal("refresh cookie not set")
	}
	if !access.HttpOnly || !refresh.HttpOnly {
		t.Error("session cookies must be HttpOnly")
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newAuthRouter(newMemoryUserStore())

	cases := []string{
		`{"username": "t", "email": "a@b.com", "password": "supersecret1"}`, // short username
		`{"username": "traveler", "email": "notanemail", "password": "supersecret1"}`,
		`{"username": "traveler", "email": "a@b.com", "password": "short"}`,
		`{}`,
	}
	for _, body := range cases {
		if w := postJSON(r, "/auth/register", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(newMemoryUserStore())
	postJSON(r, "/auth/register", registerBody)

	w := postJSON(r, "/auth/login", `{"email": "traveler@example.com", "password": "wrongpassword"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRefreshFlow(t *testing.T) {
	store := newMemoryUserStore()
	r, _ := newAuthRouter(store)
	postJSON(r, "/auth/register", registerBody)

	login := postJSON(r, "/auth/login", loginBody)
	refresh := cookieByName(login.Result(), services.RefreshCookie)

	// No cookie: 401.
	if w := postJSON(r, "/auth/refresh", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh without cookie: status = %d, want 401", w.Code)
	}

	// Valid refresh cookie: new access cookie.
	w := postJSON(r, "/auth/refresh", "", refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", w.Code, w.Body.String())
	}
	if c := cookieByName(w.Result(), services.AccessCookie); c == nil || c.Value == "" {
		t.Error("refresh did not set a new access cookie")
	}

	// Garbage refresh cookie: 401.
	bad := &http.Cookie{Name: services.RefreshCookie, Value: "not-a-token"}
	if w := postJSON(r, "/auth/refresh", "", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh with bad token: status = %d, want 401", w.Code)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	store := newMemoryUserStore()
	r, _ := newAuthRouter(store)
	postJSON(r, "/auth/register", registerBody)

	login := postJSON(r, "/auth/login", loginBody)
	refresh := cookieByName(login.Result(), services.RefreshCookie)

	w := postJSON(r, "/auth/logout", "", refresh)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	if len(store.revoked) != 1 {
		t.Fatalf("revoked %d tokens, want 1", len(store.revoked))
	}

	// The revoked token can no longer be used to refresh.
	if w := postJSON(r, "/auth/refresh", "", refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status = %d, want 401", w.Code)
	}

	// Cookies are cleared.
	for _, c := range w.Result().Cookies() {
		if (c.Name == services.AccessCookie || c.Name == services.RefreshCookie) && c.MaxAge >= 0 {
			t.Errorf("cookie %s not cleared (MaxAge=%d)", c.Name, c.MaxAge)
		}
	}
}

func TestCurrentUserRequiresAuth(t *testing.T) {
	store := newMemoryUserStore()
	r, _ := newAuthRouter(store)
	postJSON(r, "/auth/register", registerBody)

	// No cookie: 401.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	// With the access cookie from login: 200 with the user payload.
	login := postJSON(r, "/auth/login", loginBody)
	access := cookieByName(login.Result(), services.AccessCookie)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.AddCookie(access)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var u map[string]string
	json.Unmarshal(w.Body.Bytes(), &u)
	if u["email"] != "traveler@example.com" || u["username"] != "traveler" {
		t.Errorf("user payload = %v", u)
	}
}

func TestRefreshCookieRejectedAsAccess(t *testing.T) {
	store := newMemoryUserStore()
	r, tokens := newAuthRouter(store)
	postJSON(r, "/auth/register", registerBody)

	user, err := store.GetUserByEmail("traveler@example.com")
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := tokens.IssueRefreshToken(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: services.AccessCookie, Value: refresh})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token accepted on a protected route: status = %d", w.Code)
	}
}

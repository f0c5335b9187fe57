package auth

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/repository/memory"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func setupTestHandlers(t *testing.T, googleEnabled bool) (*AuthHandlers, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	cfg := &config.Auth{
		Google: config.GoogleOAuth{
			RedirectURL: "http://localhost:8080/api/auth/google/callback",
			FrontendURL: "http://localhost:3000",
		},
	}
	if googleEnabled {
		cfg.Google.ClientID = "client-id"
		cfg.Google.ClientSecret = "client-secret"
	}

	h := NewAuthHandlers(storage, newTestJWTService(), NewPasswordServiceWithCost(4), cfg, false, zap.NewNop())
	return h, storage
}

func postJSON(handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeAuth(t *testing.T, rec *httptest.ResponseRecorder) AuthResponse {
	t.Helper()
	var envelope struct {
		Success bool         `json:"success"`
		Data    AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_RegisterLogin(t *testing.T) {
	h, storage := setupTestHandlers(t, false)

	t.Run("register", func(t *testing.T) {
		rec := postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: " Maker@Example.com ", Password: "password123"})
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeAuth(t, rec)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "maker@example.com", resp.User.Email)
		assert.Equal(t, "maker", resp.User.Name)

		cookie := findCookie(rec, TokenCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, resp.AccessToken, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		user, err := storage.GetUserByEmail(context.Background(), "maker@example.com")
		require.NoError(t, err)
		require.NotNil(t, user.PasswordHash)
		assert.NotEqual(t, "password123", *user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: "maker@example.com", Password: "password123"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("register validation", func(t *testing.T) {
		rec := postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: "nope", Password: "password123"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: "new@example.com", Password: "short"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
		rec = httptest.NewRecorder()
		h.Register(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := postJSON(h.Login, "/api/auth/login", LoginRequest{Email: "MAKER@example.com", Password: "password123"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "maker@example.com", decodeAuth(t, rec).User.Email)

		user, err := storage.GetUserByEmail(context.Background(), "maker@example.com")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("login failures look the same", func(t *testing.T) {
		wrong := postJSON(h.Login, "/api/auth/login", LoginRequest{Email: "maker@example.com", Password: "wrong-password"})
		unknown := postJSON(h.Login, "/api/auth/login", LoginRequest{Email: "ghost@example.com", Password: "password123"})

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})
}

func TestAuthHandlers_Refresh(t *testing.T) {
	h, _ := setupTestHandlers(t, false)

	rec := postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: "maker@example.com", Password: "password123", Name: "Maker"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tokens := decodeAuth(t, rec)

	t.Run("refresh token issues new pair", func(t *testing.T) {
		rec := postJSON(h.Refresh, "/api/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Maker", decodeAuth(t, rec).User.Name)
	})

	t.Run("access token rejected", func(t *testing.T) {
		rec := postJSON(h.Refresh, "/api/auth/refresh", RefreshRequest{RefreshToken: tokens.AccessToken})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := postJSON(h.Refresh, "/api/auth/refresh", RefreshRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandlers_SessionLogout(t *testing.T) {
	h, _ := setupTestHandlers(t, false)
	m := newTestMiddleware(h.jwtService)
	session := m.OptionalAuth(http.HandlerFunc(h.Session))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		session.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Data)
	})

	t.Run("signed in", func(t *testing.T) {
		token, err := h.jwtService.GenerateAccessToken(testUser())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		rec := httptest.NewRecorder()
		session.ServeHTTP(rec, req)

		data := decodeResponse(t, rec).Data.(map[string]interface{})
		assert.Equal(t, float64(42), data["id"])
		assert.Equal(t, "Maker", data["name"])
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookie := findCookie(rec, TokenCookie)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})
}

// fakeGoogle serves the token and userinfo endpoints of the OAuth flow.
func fakeGoogle(t *testing.T, profile googleUser) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"google-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer google-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthHandlers_Google(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h, _ := setupTestHandlers(t, false)
		rec := httptest.NewRecorder()
		h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("login sets state and redirects", func(t *testing.T) {
		h, _ := setupTestHandlers(t, true)
		rec := httptest.NewRecorder()
		h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		state := findCookie(rec, stateCookie)
		require.NotNil(t, state)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, state.Value, location.Query().Get("state"))
		assert.Equal(t, "client-id", location.Query().Get("client_id"))
	})

	callback := func(h *AuthHandlers, state, cookieState string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=good-code&state="+state, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
		}
		rec := httptest.NewRecorder()
		h.GoogleCallback(rec, req)
		return rec
	}

	withFake := func(t *testing.T, profile googleUser) (*AuthHandlers, *memory.MemStorage) {
		h, storage := setupTestHandlers(t, true)
		srv := fakeGoogle(t, profile)
		h.google.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
		h.userInfoURL = srv.URL + "/userinfo"
		return h, storage
	}

	t.Run("state mismatch", func(t *testing.T) {
		h, _ := withFake(t, googleUser{})
		assert.Equal(t, http.StatusBadRequest, callback(h, "abc", "xyz").Code)
		assert.Equal(t, http.StatusBadRequest, callback(h, "abc", "").Code)
	})

	t.Run("creates user and sets session cookie", func(t *testing.T) {
		h, storage := withFake(t, googleUser{ID: "g-1", Email: "New@Example.com", VerifiedEmail: true, Name: "New Person", Picture: "https://lh3.example.com/p.png"})

		rec := callback(h, "state-1", "state-1")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Location"))
		require.NotNil(t, findCookie(rec, TokenCookie))

		user, err := storage.GetUserByEmail(context.Background(), "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "google", user.RegistrationSource)
		assert.Equal(t, "New Person", user.Name)
		require.NotNil(t, user.GoogleID)
		assert.Equal(t, "g-1", *user.GoogleID)
		assert.Nil(t, user.PasswordHash)
	})

	t.Run("links existing account", func(t *testing.T) {
		h, storage := withFake(t, googleUser{ID: "g-2", Email: "maker@example.com", VerifiedEmail: true, Name: "Ignored"})
		rec := postJSON(h.Register, "/api/auth/register", RegisterRequest{Email: "maker@example.com", Password: "password123", Name: "Maker"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = callback(h, "s", "s")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

		user, err := storage.GetUserByEmail(context.Background(), "maker@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Maker", user.Name)
		require.NotNil(t, user.GoogleID)
		assert.Equal(t, "g-2", *user.GoogleID)
		assert.NotNil(t, user.PasswordHash)
	})

	t.Run("unverified email", func(t *testing.T) {
		h, _ := withFake(t, googleUser{ID: "g-3", Email: "x@example.com"})
		assert.Equal(t, http.StatusForbidden, callback(h, "s", "s").Code)
	})
}

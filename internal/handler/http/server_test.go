package http

import (
	"Launchpad-Backend/internal/auth"
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/objectstore"
	"Launchpad-Backend/internal/payment"
	"Launchpad-Backend/internal/ratelimit"
	"Launchpad-Backend/internal/repository/memory"
	"Launchpad-Backend/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testOrigin = "http://localhost:3000"
	adminEmail = "admin@example.com"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	handler http.Handler
	storage *memory.MemStorage
	gateway *payment.TestGateway
	backend *objectstore.MemoryBackend
	jwt     *auth.JWTService
}

func defaultRateLimit() *config.RateLimit {
	return &config.RateLimit{
		Enabled:       true,
		Window:        time.Minute,
		MutationLimit: 100,
		ClickLimit:    100,
		AuthLimit:     100,
	}
}

func newTestEnv(t *testing.T, rl *config.RateLimit) *testEnv {
	t.Helper()
	log := zap.NewNop()

	storage := memory.New()
	storage.SeedSlots([]domain.PlacementSlot{
		{Code: "HERO-001", Category: domain.SlotCategoryHero, Position: domain.SlotPositionHero, DisplayName: "Hero", BasePrice: 599, IsActive: true},
		{Code: "LEFT-001", Category: domain.SlotCategorySidebar, Position: domain.SlotPositionLeft, DisplayName: "Left sidebar 1", BasePrice: 299, IsActive: true},
		{Code: "RIGHT-001", Category: domain.SlotCategorySidebar, Position: domain.SlotPositionRight, DisplayName: "Right sidebar 1", BasePrice: 299, IsActive: true},
	})

	authCfg := &config.Auth{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "launchpad-test",
		AdminEmails:          []string{adminEmail},
	}
	paymentCfg := &config.Payment{
		Currency:     "usd",
		SuccessURL:   "http://localhost:8080/api/placements/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "http://localhost:3000/placements?canceled=1",
		DashboardURL: "http://localhost:3000/dashboard/placements",
	}

	m := metrics.New(nil)
	jwtService := auth.NewJWTService(auth.NewJWTConfig(authCfg))
	gateway := payment.NewTestGateway("", false, log)
	backend := objectstore.NewMemoryBackend()

	server := NewServer(Deps{
		Storage:        storage,
		Launches:       service.NewLaunchService(storage, &config.Launches{SlugSuffixLength: 4, ClaimKeyLength: 24}, log),
		Comments:       service.NewCommentService(storage, log),
		Users:          service.NewUserService(storage, log),
		Clicks:         service.NewClickService(memory.NewClickStore(), storage, nil, m, log),
		Placements:     service.NewPlacementService(storage, gateway, paymentCfg, m, log),
		Uploader:       objectstore.NewUploader(backend, "https://cdn.example.com", log),
		AuthHandlers:   auth.NewAuthHandlers(storage, jwtService, auth.NewPasswordServiceWithCost(4), authCfg, false, log),
		AuthMiddleware: auth.NewMiddleware(jwtService, authCfg.IsAdmin, []string{testOrigin}, log),
		Limiter:        ratelimit.New(ratelimit.NewMemoryStore(), "test:"),
		RateLimit:      rl,
		Payment:        paymentCfg,
		Metrics:        m,
	}, log)

	return &testEnv{
		handler: server.SetupRoutes(),
		storage: storage,
		gateway: gateway,
		backend: backend,
		jwt:     jwtService,
	}
}

// login создает пользователя и возвращает его access токен
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	user := &domain.User{Email: email, Name: "Maker", RegistrationSource: "email", IsActive: true}
	require.NoError(t, e.storage.CreateUser(context.Background(), user))

	token, err := e.jwt.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Recorded bool            `json:"recorded"`
	Data     json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (e *testEnv) createLaunch(t *testing.T, token, name string) *domain.Launch {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/launches", token, map[string]interface{}{
		"name":       name,
		"tagline":    "Ship faster",
		"websiteUrl": "https://rocket.example.com",
		"categories": []string{"Dev Tools"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var launch domain.Launch
	decode(t, rec, &launch)
	return &launch
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())

	t.Run("health", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.DatabaseStatus)
	})

	t.Run("ready", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/ready", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
	})

	t.Run("webhook ping", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/webhook/stripe", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServer_Launches(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	owner := env.login(t, "owner@example.com")
	other := env.login(t, "other@example.com")

	t.Run("create requires auth", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/launches", "", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	launch := env.createLaunch(t, owner, "Rocket App")
	assert.Equal(t, "rocket-app", launch.Slug)

	t.Run("get by slug and id", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches/rocket-app", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, fmt.Sprintf("/api/launches/%d", launch.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Launch
		decode(t, rec, &got)
		assert.Equal(t, "Rocket App", got.Name)
	})

	t.Run("unknown launch", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list with filters", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches?category=dev-tools&q=rocket", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var page domain.LaunchPage
		decode(t, rec, &page)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("validation error", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/launches", owner, map[string]string{"name": "No URL"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, decode(t, rec, nil).Success)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/launches", owner, []byte("{"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only owner updates", func(t *testing.T) {
		path := fmt.Sprintf("/api/launches/%d", launch.ID)

		rec := env.do(http.MethodPut, path, other, map[string]string{"tagline": "hijacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(http.MethodPut, path, owner, map[string]string{"tagline": "Ship even faster"})
		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Launch
		decode(t, rec, &got)
		assert.Equal(t, "Ship even faster", got.Tagline)
	})

	t.Run("mine", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches/mine", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page domain.LaunchPage
		decode(t, rec, &page)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("comments", func(t *testing.T) {
		path := fmt.Sprintf("/api/launches/%d/comments", launch.ID)

		rec := env.do(http.MethodPost, path, other, map[string]string{"body": "Nice launch"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var comment domain.Comment
		decode(t, rec, &comment)

		rec = env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var page service.CommentPage
		decode(t, rec, &page)
		assert.Equal(t, int64(1), page.Total)

		rec = env.do(http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), owner, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), other, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/api/launches/%d", launch.ID)

		rec := env.do(http.MethodDelete, path, other, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(http.MethodDelete, path, owner, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServer_OriginCheck(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	token := env.login(t, "owner@example.com")

	t.Run("foreign origin rejected", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/launches", token, map[string]string{"name": "x"},
			"Origin", "https://evil.example")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "origin mismatch", decode(t, rec, nil).Message)
	})

	t.Run("allowed origin passes", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches", "", nil, "Origin", testOrigin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := env.do(http.MethodOptions, "/api/launches", "", nil, "Origin", testOrigin)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("webhook exempt", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_unknown","object":"checkout.session"}}}`)
		rec := env.do(http.MethodPost, "/api/webhook/stripe", "", payload, "Origin", "https://evil.example")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestServer_Clicks(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	launch := env.createLaunch(t, env.login(t, "owner@example.com"), "Rocket App")

	event := map[string]interface{}{"productId": launch.ID, "sessionId": "visitor-1", "type": "click"}

	t.Run("first click is recorded", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/record", "", event)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec, nil)
		assert.True(t, resp.Success)
		assert.True(t, resp.Recorded)
	})

	t.Run("same session same day is a duplicate", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/record", "", event)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode(t, rec, nil)
		assert.False(t, resp.Recorded)
		assert.Equal(t, "duplicate, not recorded", resp.Message)
	})

	t.Run("unknown launch", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/record", "", map[string]interface{}{
			"productId": 9999, "sessionId": "visitor-1", "type": "click",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/record", "", map[string]interface{}{
			"productId": launch.ID, "sessionId": "visitor-1", "type": "hover",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("outbound redirect counts a visit", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/go/rocket-app", "", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://rocket.example.com", rec.Header().Get("Location"))

		var visitor *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == visitorCookie {
				visitor = c
			}
		}
		require.NotNil(t, visitor)
	})

	t.Run("stats", func(t *testing.T) {
		rec := env.do(http.MethodGet, fmt.Sprintf("/api/record?productId=%d", launch.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats domain.ClickStats
		decode(t, rec, &stats)
		assert.Equal(t, int64(1), stats.AllTime)
		assert.Equal(t, int64(1), stats.Today)
		assert.Equal(t, int64(1), stats.AllTimeOutbound)
	})

	t.Run("batch stats", func(t *testing.T) {
		rec := env.do(http.MethodGet, fmt.Sprintf("/api/record/batch?ids=%d,%d,777", launch.ID, launch.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats map[string]domain.ClickStats
		decode(t, rec, &stats)
		assert.Len(t, stats, 2)
		assert.Equal(t, int64(1), stats[fmt.Sprint(launch.ID)].AllTime)
		assert.Equal(t, int64(0), stats["777"].AllTime)
	})

	t.Run("batch stats rejects garbage", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/record/batch?ids=1,abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(http.MethodGet, "/api/record/batch", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_RateLimit(t *testing.T) {
	rl := defaultRateLimit()
	rl.AuthLimit = 2
	env := newTestEnv(t, rl)

	creds := map[string]string{"email": "nobody@example.com", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := env.do(http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.False(t, decode(t, rec, nil).Success)

	t.Run("groups are independent", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/launches", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		rl := defaultRateLimit()
		rl.Enabled = false
		rl.AuthLimit = 1
		env := newTestEnv(t, rl)

		for i := 0; i < 3; i++ {
			rec := env.do(http.MethodPost, "/api/auth/login", "", creds)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
	})
}

func TestServer_Placements(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	buyer := env.login(t, "buyer@example.com")

	checkout := func(t *testing.T, code string) service.CheckoutResult {
		t.Helper()
		rec := env.do(http.MethodPost, "/api/placements/create-checkout-session", buyer,
			map[string]interface{}{"codeName": code, "duration": 15})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var result service.CheckoutResult
		decode(t, rec, &result)
		return result
	}

	t.Run("slots are public", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/placements/slots", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var slots []domain.SlotAvailability
		decode(t, rec, &slots)
		assert.Len(t, slots, 3)
	})

	t.Run("checkout requires auth", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/placements/create-checkout-session", "",
			map[string]interface{}{"codeName": "HERO-001", "duration": 15})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown slot", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/placements/create-checkout-session", buyer,
			map[string]interface{}{"codeName": "NOPE-001", "duration": 15})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	hero := checkout(t, "HERO-001")
	assert.Equal(t, int64(419), hero.Placement.Price)

	t.Run("activation without payment", func(t *testing.T) {
		rec := env.do(http.MethodPatch, fmt.Sprintf("/api/placements/%d/status", hero.Placement.ID), buyer,
			map[string]string{"status": "active"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("webhook marks the placement paid", func(t *testing.T) {
		payload := []byte(fmt.Sprintf(
			`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":%q,"object":"checkout.session","payment_status":"paid"}}}`,
			hero.SessionID))
		rec := env.do(http.MethodPost, "/api/webhook/stripe", "", payload)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, "/api/placements/active", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var active domain.ActivePlacements
		decode(t, rec, &active)
		require.Len(t, active.Hero, 1)
		assert.Equal(t, hero.Placement.ID, active.Hero[0].ID)
	})

	t.Run("paid slot is not for sale", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/placements/create-checkout-session", buyer,
			map[string]interface{}{"codeName": "HERO-001", "duration": 30})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("success redirect confirms the session", func(t *testing.T) {
		left := checkout(t, "LEFT-001")
		env.gateway.Complete(left.SessionID)

		rec := env.do(http.MethodGet, "/api/placements/success?session_id="+left.SessionID, "", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		location := rec.Header().Get("Location")
		assert.True(t, strings.HasPrefix(location, "http://localhost:3000/dashboard/placements?"))
		assert.Contains(t, location, "checkout=paid")
	})

	t.Run("success redirect with unknown session", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/placements/success?session_id=cs_missing", "", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "checkout=error")
	})

	t.Run("content update", func(t *testing.T) {
		rec := env.do(http.MethodPut, fmt.Sprintf("/api/placements/%d", hero.Placement.ID), buyer,
			map[string]string{"title": "Rocket", "tagline": "Ship faster"})
		require.Equal(t, http.StatusOK, rec.Code)

		var p domain.Placement
		decode(t, rec, &p)
		assert.Equal(t, "Rocket", p.Title)
	})

	t.Run("mine", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/placements", buyer, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var mine []domain.Placement
		decode(t, rec, &mine)
		assert.Len(t, mine, 2)
	})

	t.Run("other users cannot edit", func(t *testing.T) {
		other := env.login(t, "other@example.com")
		rec := env.do(http.MethodPatch, fmt.Sprintf("/api/placements/%d/status", hero.Placement.ID), other,
			map[string]string{"status": "inactive"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad webhook body", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/webhook/stripe", "", []byte("not json"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("processor outage", func(t *testing.T) {
		env.gateway.Fail = fmt.Errorf("stripe is down")
		defer func() { env.gateway.Fail = nil }()

		other := env.login(t, "late@example.com")
		rec := env.do(http.MethodPost, "/api/placements/create-checkout-session", other,
			map[string]interface{}{"codeName": "RIGHT-001", "duration": 30})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestServer_Admin(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	admin := env.login(t, adminEmail)
	maker := env.login(t, "maker@example.com")

	body := ImportRequest{Launches: []service.LaunchInput{{
		Name:       "Imported Tool",
		WebsiteURL: "https://imported.example.com",
		Categories: domain.CategoryList{"ai"},
	}}}

	t.Run("non admin", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/admin/launches/import", maker, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	rec := env.do(http.MethodPost, "/api/admin/launches/import", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var imported []service.ImportedLaunch
	decode(t, rec, &imported)
	require.Len(t, imported, 1)
	assert.Len(t, imported[0].ClaimKey, 24)

	path := fmt.Sprintf("/api/launches/%d/claim", imported[0].Launch.ID)

	t.Run("wrong key", func(t *testing.T) {
		rec := env.do(http.MethodPost, path, maker, ClaimRequest{ClaimKey: "nope"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("claim once", func(t *testing.T) {
		rec := env.do(http.MethodPost, path, maker, ClaimRequest{ClaimKey: imported[0].ClaimKey})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodPost, path, admin, ClaimRequest{ClaimKey: imported[0].ClaimKey})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestServer_UsersAndUploads(t *testing.T) {
	env := newTestEnv(t, defaultRateLimit())
	token := env.login(t, "maker@example.com")

	t.Run("profile", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/users/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodPut, "/api/users/me", token, map[string]string{"name": "Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)

		var user domain.User
		decode(t, rec, &user)
		assert.Equal(t, "Renamed", user.Name)
	})

	t.Run("session", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/auth/session", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var identity domain.Identity
		decode(t, rec, &identity)
		assert.Equal(t, "maker@example.com", identity.Email)
	})

	upload := func(kind string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("kind", kind)
		part, _ := mw.CreateFormFile("file", "logo.png")
		part.Write(content)
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("upload logo", func(t *testing.T) {
		rec := upload("logo", pngHeader)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var obj objectstore.Object
		decode(t, rec, &obj)
		assert.True(t, strings.HasPrefix(obj.URL, "https://cdn.example.com/logo/"))
		_, ok := env.backend.Get(obj.Key)
		assert.True(t, ok)
	})

	t.Run("upload rejects text", func(t *testing.T) {
		rec := upload("logo", []byte("hello world"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload rejects unknown kind", func(t *testing.T) {
		rec := upload("avatar", pngHeader)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "10.0.0.2:80", "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.2:80", "198.51.100.2"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
		{"remote without port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

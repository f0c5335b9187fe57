package auth

import (
	"Launchpad-Backend/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// IdentityKey ключ для получения пользователя сессии из контекста
	IdentityKey ContextKey = "identity"

	// TokenCookie имя cookie с access токеном
	TokenCookie = "auth_token"
)

// Middleware JWT middleware для HTTP обработчиков
type Middleware struct {
	jwtService     *JWTService
	isAdmin        func(email string) bool
	allowedOrigins map[string]struct{}
	log            *zap.Logger
}

// NewMiddleware создает новый JWT middleware. isAdmin решает, кто допущен
// к административным маршрутам.
func NewMiddleware(jwtService *JWTService, isAdmin func(email string) bool, allowedOrigins []string, log *zap.Logger) *Middleware {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins[origin] = struct{}{}
		}
	}

	return &Middleware{
		jwtService:     jwtService,
		isAdmin:        isAdmin,
		allowedOrigins: origins,
		log:            log,
	}
}

// tokenFromRequest берет токен из Authorization заголовка, затем из cookie
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return ExtractTokenFromBearer(header)
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth middleware для проверки JWT токена
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			m.log.Debug("missing access token")
			writeError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			m.log.Debug("invalid token", zap.Error(err))
			if errors.Is(err, ErrExpiredToken) {
				writeError(w, "Token expired", http.StatusUnauthorized)
			} else {
				writeError(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		m.log.Debug("authenticated user",
			zap.Int64("user_id", claims.UserID),
			zap.String("email", claims.Email))

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
	})
}

// OptionalAuth middleware для опциональной проверки JWT токена
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			// Неверный токен, но для опционального middleware это не критично
			m.log.Debug("optional auth: invalid token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
	})
}

// RequireAdmin пропускает только администраторов. Ставится после RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentityFromContext(r.Context())
		if !ok {
			writeError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if m.isAdmin == nil || !m.isAdmin(identity.Email) {
			m.log.Warn("admin route denied", zap.Int64("user_id", identity.ID))
			writeError(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity кладет пользователя сессии в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentityFromContext извлекает пользователя сессии из контекста
func GetIdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}

// GetUserIDFromContext извлекает ID пользователя из контекста
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	identity, ok := GetIdentityFromContext(ctx)
	return identity.ID, ok
}

func (m *Middleware) originAllowed(origin string) bool {
	_, ok := m.allowedOrigins[strings.TrimRight(origin, "/")]
	return ok
}

// CORS middleware для обработки CORS запросов
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")

		// Обработка preflight OPTIONS запросов
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CheckOrigin отклоняет изменяющие запросы с чужим Origin. Запросы без Origin
// (серверные клиенты) и пути из exempt пропускаются.
func (m *Middleware) CheckOrigin(exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || hasPrefix(r.URL.Path, exempt) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin != "" && !m.originAllowed(origin) {
				m.log.Warn("origin mismatch",
					zap.String("origin", origin),
					zap.String("path", r.URL.Path))
				writeError(w, "origin mismatch", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Response общий конверт ответа API
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Success: false, Message: message})
}

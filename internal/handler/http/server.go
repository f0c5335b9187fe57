package http

import (
	"Launchpad-Backend/internal/auth"
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/objectstore"
	"Launchpad-Backend/internal/ratelimit"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// webhookPrefix пути платежной системы, для которых не проверяется Origin
const webhookPrefix = "/api/webhook/"

// Deps зависимости HTTP сервера
type Deps struct {
	Storage        repository.Storage
	Launches       *service.LaunchService
	Comments       *service.CommentService
	Users          *service.UserService
	Clicks         *service.ClickService
	Placements     *service.PlacementService
	Uploader       *objectstore.Uploader
	AuthHandlers   *auth.AuthHandlers
	AuthMiddleware *auth.Middleware
	Limiter        *ratelimit.Limiter
	RateLimit      *config.RateLimit
	Payment        *config.Payment
	Metrics        *metrics.Metrics
	Jobs           JobStatsFunc
	SecureCookies  bool
}

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers      *auth.AuthHandlers
	authMiddleware    *auth.Middleware
	launchesHandler   *LaunchesHandler
	commentsHandler   *CommentsHandler
	usersHandler      *UsersHandler
	clicksHandler     *ClicksHandler
	placementsHandler *PlacementsHandler
	webhookHandler    *WebhookHandler
	uploadsHandler    *UploadsHandler
	redirectHandler   *RedirectHandler
	healthHandler     *HealthHandler
	limiter           *ratelimit.Limiter
	rateLimit         *config.RateLimit
	metrics           *metrics.Metrics
	log               *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(deps Deps, log *zap.Logger) *Server {
	if deps.RateLimit == nil {
		deps.RateLimit = &config.RateLimit{}
	}

	return &Server{
		authHandlers:      deps.AuthHandlers,
		authMiddleware:    deps.AuthMiddleware,
		launchesHandler:   NewLaunchesHandler(deps.Launches, log),
		commentsHandler:   NewCommentsHandler(deps.Comments, log),
		usersHandler:      NewUsersHandler(deps.Users, log),
		clicksHandler:     NewClicksHandler(deps.Clicks, log),
		placementsHandler: NewPlacementsHandler(deps.Placements, deps.Payment, log),
		webhookHandler:    NewWebhookHandler(deps.Placements, log),
		uploadsHandler:    NewUploadsHandler(deps.Uploader, log),
		redirectHandler:   NewRedirectHandler(deps.Launches, deps.Clicks, deps.SecureCookies, log),
		healthHandler:     NewHealthHandler(deps.Storage, deps.Jobs, log),
		limiter:           deps.Limiter,
		rateLimit:         deps.RateLimit,
		metrics:           deps.Metrics,
		log:               log,
	}
}

// limit возвращает rate limit middleware группы маршрутов
func (s *Server) limit(group string, limit int) func(http.Handler) http.Handler {
	if s.limiter == nil || s.rateLimit == nil || !s.rateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(s.limiter,
		ratelimit.Rule{Group: group, Limit: limit, Window: s.rateLimit.Window},
		clientIP, s.log, s.metrics.RecordRateLimitRejection)
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(s.authMiddleware.CORS)
	r.Use(s.authMiddleware.CheckOrigin(webhookPrefix))

	// Health checks (без аутентификации)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Swagger документация
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Переход на сайт запуска с учетом клика
	r.Get("/go/{idOrSlug}", s.redirectHandler.HandleRedirect)

	authLimit := s.limit("auth", s.rateLimit.AuthLimit)
	clickLimit := s.limit("clicks", s.rateLimit.ClickLimit)
	mutationLimit := s.limit("mutations", s.rateLimit.MutationLimit)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/register", s.authHandlers.Register)
			r.With(authLimit).Post("/login", s.authHandlers.Login)
			r.With(authLimit).Post("/refresh", s.authHandlers.Refresh)
			r.Post("/logout", s.authHandlers.Logout)
			r.With(s.authMiddleware.OptionalAuth).Get("/session", s.authHandlers.Session)
			r.Get("/google/login", s.authHandlers.GoogleLogin)
			r.Get("/google/callback", s.authHandlers.GoogleCallback)
		})

		// Клики (без аутентификации)
		r.With(clickLimit).Post("/record", s.clicksHandler.Record)
		r.Get("/record", s.clicksHandler.Stats)
		r.Get("/record/batch", s.clicksHandler.BatchStats)

		// Webhook платежной системы (без аутентификации, проверяется подпись)
		r.Post("/webhook/stripe", s.webhookHandler.Stripe)
		r.Get("/webhook/stripe", s.webhookHandler.Ping)

		r.Route("/launches", func(r chi.Router) {
			r.Get("/", s.launchesHandler.List)
			r.With(s.authMiddleware.RequireAuth).Get("/mine", s.launchesHandler.Mine)
			r.Get("/{id}", s.launchesHandler.Get)
			r.Get("/{id}/comments", s.commentsHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware.RequireAuth, mutationLimit)
				r.Post("/", s.launchesHandler.Create)
				r.Put("/{id}", s.launchesHandler.Update)
				r.Delete("/{id}", s.launchesHandler.Delete)
				r.Post("/{id}/claim", s.launchesHandler.Claim)
				r.Post("/{id}/comments", s.commentsHandler.Create)
			})
		})

		r.With(s.authMiddleware.RequireAuth, mutationLimit).Delete("/comments/{id}", s.commentsHandler.Delete)

		r.Route("/placements", func(r chi.Router) {
			r.Get("/slots", s.placementsHandler.Slots)
			r.Get("/active", s.placementsHandler.Active)
			r.Get("/success", s.placementsHandler.Success)
			r.With(s.authMiddleware.RequireAuth).Get("/", s.placementsHandler.Mine)

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware.RequireAuth, mutationLimit)
				r.Post("/create-checkout-session", s.placementsHandler.CreateCheckoutSession)
				r.Patch("/{id}/status", s.placementsHandler.SetStatus)
				r.Put("/{id}", s.placementsHandler.UpdateContent)
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth)
			r.Get("/", s.usersHandler.Me)
			r.With(mutationLimit).Put("/", s.usersHandler.UpdateMe)
		})

		r.With(s.authMiddleware.RequireAuth, mutationLimit).Post("/uploads", s.uploadsHandler.Upload)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth, s.authMiddleware.RequireAdmin)
			r.Post("/launches/import", s.launchesHandler.Import)
		})
	})

	return r
}

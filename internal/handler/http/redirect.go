package http

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// visitorCookie хранит анонимный ID сессии для учета переходов
const visitorCookie = "lp_visitor"

// RedirectHandler обработчик переходов на сайт запуска
type RedirectHandler struct {
	launches      *service.LaunchService
	clicks        *service.ClickService
	secureCookies bool
	log           *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(launches *service.LaunchService, clicks *service.ClickService, secureCookies bool, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		launches:      launches,
		clicks:        clicks,
		secureCookies: secureCookies,
		log:           log,
	}
}

// HandleRedirect учитывает переход и перенаправляет на сайт запуска
//
//	@Summary		Visit launch website
//	@Description	Count an outbound visit for the visitor cookie and redirect to the launch website
//	@Tags			Clicks
//	@Param			idOrSlug	path	string	true	"Launch ID or slug"
//	@Success		302
//	@Failure		404	{object}	Response
//	@Router			/go/{idOrSlug} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")

	launch, err := h.launches.Get(r.Context(), idOrSlug)
	if err != nil {
		if errors.Is(err, repository.ErrLaunchNotFound) {
			h.log.Debug("launch not found", zap.String("id_or_slug", idOrSlug))
			http.NotFound(w, r)
			return
		}
		h.log.Error("failed to process redirect", zap.String("id_or_slug", idOrSlug), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ошибка учета не должна мешать переходу
	result, err := h.clicks.Record(r.Context(), service.RecordInput{
		LaunchID:  launch.ID,
		SessionID: h.visitorID(w, r),
		Type:      domain.ClickTypeOutbound,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.log.Warn("failed to record outbound visit", zap.Int64("launch_id", launch.ID), zap.Error(err))
	} else {
		h.log.Debug("outbound visit",
			zap.Int64("launch_id", launch.ID),
			zap.Bool("recorded", result.Recorded),
			zap.String("ip", clientIP(r)))
	}

	http.Redirect(w, r, launch.WebsiteURL, http.StatusFound)
}

// visitorID возвращает ID посетителя из cookie или выдает новый
func (h *RedirectHandler) visitorID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(visitorCookie); err == nil && cookie.Value != "" && len(cookie.Value) <= 64 {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

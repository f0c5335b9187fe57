package http

import (
	"Launchpad-Backend/internal/service"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxWebhookBytes ограничение размера события платежной системы
const maxWebhookBytes = 64 << 10

// WebhookHandler принимает уведомления платежной системы
type WebhookHandler struct {
	placements *service.PlacementService
	log        *zap.Logger
}

// NewWebhookHandler создает новый обработчик webhook
func NewWebhookHandler(placements *service.PlacementService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{placements: placements, log: log}
}

// Stripe обрабатывает событие Stripe
//
//	@Summary		Stripe webhook
//	@Description	Signed payment notifications. Unknown events are acknowledged.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string	true	"Stripe signature"
//	@Success		200					{object}	Response
//	@Failure		400					{object}	Response	"Invalid signature"
//	@Router			/api/webhook/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.log.Warn("failed to read webhook body", zap.Error(err))
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.placements.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, map[string]bool{"received": true}, http.StatusOK)
}

// Ping отвечает на проверку доступности endpoint
//
//	@Summary		Stripe webhook health
//	@Tags			Webhooks
//	@Produce		plain
//	@Success		200	{string}	string	"ok"
//	@Router			/api/webhook/stripe [get]
func (h *WebhookHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("stripe webhook endpoint is up"))
}

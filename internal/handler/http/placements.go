package http

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/service"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// PlacementsHandler обработчик платных размещений
type PlacementsHandler struct {
	placements   *service.PlacementService
	dashboardURL string
	log          *zap.Logger
}

// NewPlacementsHandler создает новый обработчик размещений
func NewPlacementsHandler(placements *service.PlacementService, cfg *config.Payment, log *zap.Logger) *PlacementsHandler {
	return &PlacementsHandler{
		placements:   placements,
		dashboardURL: cfg.DashboardURL,
		log:          log,
	}
}

// StatusRequest запрос на смену статуса размещения
type StatusRequest struct {
	Status domain.PlacementStatus `json:"status"`
}

// CreateCheckoutSession открывает платежную сессию на аренду слота
//
//	@Summary		Create checkout session
//	@Description	Reserve a slot for 15 or 30 days and open a payment session
//	@Tags			Placements
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		service.CheckoutInput	true	"Slot and duration"
//	@Success		201		{object}	Response{data=service.CheckoutResult}
//	@Failure		400		{object}	Response
//	@Failure		401		{object}	Response
//	@Failure		404		{object}	Response	"Slot not found"
//	@Failure		409		{object}	Response	"Slot booked for this period"
//	@Failure		502		{object}	Response	"Payment provider unavailable"
//	@Router			/api/placements/create-checkout-session [post]
func (h *PlacementsHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in service.CheckoutInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.placements.CreateCheckout(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, result, http.StatusCreated)
}

// Mine возвращает размещения текущего пользователя
//
//	@Summary		My placements
//	@Tags			Placements
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Response{data=[]domain.Placement}
//	@Failure		401	{object}	Response
//	@Router			/api/placements [get]
func (h *PlacementsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	placements, err := h.placements.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, placements, http.StatusOK)
}

// Slots возвращает каталог слотов с ценами и доступностью
//
//	@Summary		Placement slots
//	@Tags			Placements
//	@Produce		json
//	@Success		200	{object}	Response{data=[]domain.SlotAvailability}
//	@Router			/api/placements/slots [get]
func (h *PlacementsHandler) Slots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.placements.ListSlots(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, slots, http.StatusOK)
}

// Active возвращает оплаченные активные размещения по позициям
//
//	@Summary		Live placements
//	@Tags			Placements
//	@Produce		json
//	@Success		200	{object}	Response{data=domain.ActivePlacements}
//	@Router			/api/placements/active [get]
func (h *PlacementsHandler) Active(w http.ResponseWriter, r *http.Request) {
	active, err := h.placements.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, active, http.StatusOK)
}

// Success сверяет платежную сессию после возврата покупателя и
// перенаправляет его в кабинет
//
//	@Summary		Checkout success redirect
//	@Tags			Placements
//	@Param			session_id	query	string	true	"Checkout session ID"
//	@Success		302
//	@Router			/api/placements/success [get]
func (h *PlacementsHandler) Success(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	result := "error"
	placement, err := h.placements.ConfirmSession(r.Context(), sessionID)
	if err != nil {
		h.log.Warn("checkout confirmation failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	} else {
		result = string(placement.PaymentStatus)
	}

	http.Redirect(w, r, h.dashboardLink(sessionID, result), http.StatusFound)
}

func (h *PlacementsHandler) dashboardLink(sessionID, result string) string {
	target, err := url.Parse(h.dashboardURL)
	if err != nil {
		return h.dashboardURL
	}
	query := target.Query()
	query.Set("checkout", result)
	if sessionID != "" {
		query.Set("session_id", sessionID)
	}
	target.RawQuery = query.Encode()
	return target.String()
}

// SetStatus включает или выключает размещение владельца
//
//	@Summary		Set placement status
//	@Description	Activation requires a paid placement
//	@Tags			Placements
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Placement ID"
//	@Param			request	body		StatusRequest	true	"active or inactive"
//	@Success		200		{object}	Response{data=domain.Placement}
//	@Failure		400		{object}	Response
//	@Failure		403		{object}	Response	"Payment required"
//	@Failure		404		{object}	Response
//	@Router			/api/placements/{id}/status [patch]
func (h *PlacementsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	placement, err := h.placements.SetStatus(r.Context(), userID, id, req.Status)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, placement, http.StatusOK)
}

// UpdateContent сохраняет креатив размещения
//
//	@Summary		Update placement content
//	@Tags			Placements
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int						true	"Placement ID"
//	@Param			request	body		service.ContentUpdate	true	"Creative"
//	@Success		200		{object}	Response{data=domain.Placement}
//	@Failure		400		{object}	Response
//	@Failure		403		{object}	Response
//	@Failure		404		{object}	Response
//	@Router			/api/placements/{id} [put]
func (h *PlacementsHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.ContentUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	placement, err := h.placements.UpdateContent(r.Context(), userID, id, in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, placement, http.StatusOK)
}

package http

import (
	"Launchpad-Backend/internal/service"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ClicksHandler обработчик событий кликов и статистики
type ClicksHandler struct {
	clicks *service.ClickService
	log    *zap.Logger
}

// NewClicksHandler создает новый обработчик кликов
func NewClicksHandler(clicks *service.ClickService, log *zap.Logger) *ClicksHandler {
	return &ClicksHandler{
		clicks: clicks,
		log:    log,
	}
}

// RecordResponse ответ на запись события
type RecordResponse struct {
	Success  bool   `json:"success"`
	Recorded bool   `json:"recorded"`
	Message  string `json:"message,omitempty"`
}

// Record записывает клик или переход на сайт
//
//	@Summary		Record a click event
//	@Description	Count a click or outbound visit once per session, day and type
//	@Tags			Clicks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.RecordInput	true	"Click event"
//	@Success		200		{object}	RecordResponse
//	@Failure		400		{object}	Response	"Invalid request data"
//	@Failure		404		{object}	Response	"Launch not found"
//	@Failure		429		{object}	Response	"Too many requests"
//	@Router			/api/record [post]
func (h *ClicksHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in service.RecordInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.UserAgent = r.UserAgent()

	result, err := h.clicks.Record(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	response := RecordResponse{Success: true, Recorded: result.Recorded}
	switch result.Reason {
	case service.ReasonDuplicate:
		response.Message = "duplicate, not recorded"
	case service.ReasonBot:
		response.Message = "bot traffic, not recorded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Stats возвращает статистику одного запуска
//
//	@Summary		Click statistics
//	@Description	Windowed click and outbound counters of one launch
//	@Tags			Clicks
//	@Produce		json
//	@Param			productId	query		int	true	"Launch ID"
//	@Success		200			{object}	Response{data=domain.ClickStats}
//	@Failure		400			{object}	Response
//	@Router			/api/record [get]
func (h *ClicksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil {
		writeError(w, "productId must be a positive integer", http.StatusBadRequest)
		return
	}

	stats, err := h.clicks.Stats(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}

// BatchStats возвращает статистику нескольких запусков
//
//	@Summary		Batch click statistics
//	@Description	Windowed counters for up to 100 launches, zero for launches without events
//	@Tags			Clicks
//	@Produce		json
//	@Param			ids	query		string	true	"Comma separated launch IDs"
//	@Success		200	{object}	Response{data=map[string]domain.ClickStats}
//	@Failure		400	{object}	Response
//	@Router			/api/record/batch [get]
func (h *ClicksHandler) BatchStats(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		writeError(w, "ids is required", http.StatusBadRequest)
		return
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	seen := make(map[int64]struct{}, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			writeError(w, "ids must be positive integers", http.StatusBadRequest)
			return
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	stats, err := h.clicks.BatchStats(r.Context(), ids)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make(map[string]interface{}, len(stats))
	for id, s := range stats {
		out[strconv.FormatInt(id, 10)] = s
	}
	writeJSON(w, out, http.StatusOK)
}

package http

import (
	"Launchpad-Backend/internal/objectstore"
	"Launchpad-Backend/internal/payment"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

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

// writeServiceError переводит ошибку сервиса в HTTP статус. Неизвестные
// ошибки логируются и отдаются клиенту как 500 без деталей.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		writeError(w, ve.Message, http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrLaunchNotFound):
		writeError(w, "Launch not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrCommentNotFound):
		writeError(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrSlotNotFound):
		writeError(w, "Placement slot not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrPlacementNotFound):
		writeError(w, "Placement not found", http.StatusNotFound)

	case errors.Is(err, repository.ErrSlotUnavailable),
		errors.Is(err, repository.ErrAlreadyClaimed),
		errors.Is(err, repository.ErrSlugExists),
		errors.Is(err, repository.ErrUserExists),
		errors.Is(err, service.ErrPlacementExpired):
		writeError(w, err.Error(), http.StatusConflict)

	case errors.Is(err, service.ErrPaymentRequired),
		errors.Is(err, service.ErrInvalidClaimKey):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, "Access denied", http.StatusForbidden)

	case errors.Is(err, payment.ErrInvalidSignature):
		writeError(w, "Invalid signature", http.StatusBadRequest)
	case errors.Is(err, payment.ErrInvalidPayload):
		writeError(w, "Invalid webhook payload", http.StatusBadRequest)
	case errors.Is(err, service.ErrPaymentProvider):
		log.Error("payment provider error", zap.Error(err))
		writeError(w, "Payment provider unavailable", http.StatusBadGateway)

	case errors.Is(err, objectstore.ErrFileTooLarge):
		writeError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, objectstore.ErrInvalidKind),
		errors.Is(err, objectstore.ErrEmptyFile),
		errors.Is(err, objectstore.ErrUnsupportedType):
		writeError(w, err.Error(), http.StatusBadRequest)

	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON читает тело запроса не больше maxBodyBytes
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID разбирает числовой параметр маршрута
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt возвращает целый query параметр или 0
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

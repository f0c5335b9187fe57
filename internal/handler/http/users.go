package http

import (
	"Launchpad-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UsersHandler обработчик профиля пользователя
type UsersHandler struct {
	users *service.UserService
	log   *zap.Logger
}

// NewUsersHandler создает новый обработчик профиля
func NewUsersHandler(users *service.UserService, log *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, log: log}
}

// Me возвращает профиль текущего пользователя
//
//	@Summary		Current user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Response{data=domain.User}
//	@Failure		401	{object}	Response
//	@Router			/api/users/me [get]
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

// UpdateMe изменяет имя и аватар текущего пользователя
//
//	@Summary		Update profile
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		service.ProfileUpdate	true	"Profile"
//	@Success		200		{object}	Response{data=domain.User}
//	@Failure		400		{object}	Response
//	@Failure		401		{object}	Response
//	@Router			/api/users/me [put]
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in service.ProfileUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, user, http.StatusOK)
}

package http

import (
	"Launchpad-Backend/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LaunchesHandler обработчик каталога запусков
type LaunchesHandler struct {
	launches *service.LaunchService
	log      *zap.Logger
}

// NewLaunchesHandler создает новый обработчик запусков
func NewLaunchesHandler(launches *service.LaunchService, log *zap.Logger) *LaunchesHandler {
	return &LaunchesHandler{
		launches: launches,
		log:      log,
	}
}

// ClaimRequest запрос на получение прав на импортированный запуск
type ClaimRequest struct {
	ClaimKey string `json:"claimKey"`
}

// ImportRequest пакет запусков для импорта
type ImportRequest struct {
	Launches []service.LaunchInput `json:"launches"`
}

// List возвращает страницу каталога
//
//	@Summary		List launches
//	@Description	Filter the catalog by category, free text and tier, newest first
//	@Tags			Launches
//	@Produce		json
//	@Param			category	query		string	false	"Category tag"
//	@Param			q			query		string	false	"Free text search"
//	@Param			tier		query		string	false	"free or featured"
//	@Param			page		query		int		false	"Page, starting at 1"
//	@Param			limit		query		int		false	"Page size, 1..50"
//	@Success		200			{object}	Response{data=domain.LaunchPage}
//	@Failure		400			{object}	Response
//	@Router			/api/launches [get]
func (h *LaunchesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.launches.Query(r.Context(), service.LaunchQuery{
		Category: query.Get("category"),
		Search:   query.Get("q"),
		Tier:     query.Get("tier"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// Mine возвращает запуски текущего пользователя
//
//	@Summary		My launches
//	@Tags			Launches
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"Page, starting at 1"
//	@Param			limit	query		int	false	"Page size, 1..50"
//	@Success		200		{object}	Response{data=domain.LaunchPage}
//	@Failure		401		{object}	Response
//	@Router			/api/launches/mine [get]
func (h *LaunchesHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	page, err := h.launches.ListMine(r.Context(), userID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// Get возвращает запуск по ID или slug
//
//	@Summary		Get launch
//	@Tags			Launches
//	@Produce		json
//	@Param			id	path		string	true	"Launch ID or slug"
//	@Success		200	{object}	Response{data=domain.Launch}
//	@Failure		404	{object}	Response
//	@Router			/api/launches/{id} [get]
func (h *LaunchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	launch, err := h.launches.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, launch, http.StatusOK)
}

// Create создает запуск от имени текущего пользователя
//
//	@Summary		Create launch
//	@Tags			Launches
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		service.LaunchInput	true	"Launch"
//	@Success		201		{object}	Response{data=domain.Launch}
//	@Failure		400		{object}	Response
//	@Failure		401		{object}	Response
//	@Router			/api/launches [post]
func (h *LaunchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var in service.LaunchInput
	if !decodeJSON(w, r, &in) {
		return
	}

	launch, err := h.launches.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info("launch created",
		zap.Int64("launch_id", launch.ID),
		zap.String("slug", launch.Slug),
		zap.Int64("user_id", userID))

	writeJSON(w, launch, http.StatusCreated)
}

// Update изменяет запуск владельца
//
//	@Summary		Update launch
//	@Tags			Launches
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int						true	"Launch ID"
//	@Param			request	body		service.LaunchUpdate	true	"Changed fields"
//	@Success		200		{object}	Response{data=domain.Launch}
//	@Failure		400		{object}	Response
//	@Failure		403		{object}	Response
//	@Failure		404		{object}	Response
//	@Router			/api/launches/{id} [put]
func (h *LaunchesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.LaunchUpdate
	if !decodeJSON(w, r, &in) {
		return
	}

	launch, err := h.launches.Update(r.Context(), userID, id, in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, launch, http.StatusOK)
}

// Delete скрывает запуск владельца
//
//	@Summary		Delete launch
//	@Tags			Launches
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Launch ID"
//	@Success		200	{object}	Response
//	@Failure		403	{object}	Response
//	@Failure		404	{object}	Response
//	@Router			/api/launches/{id} [delete]
func (h *LaunchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.launches.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info("launch deleted", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
	writeJSON(w, map[string]int64{"id": id}, http.StatusOK)
}

// Claim передает импортированный запуск текущему пользователю
//
//	@Summary		Claim imported launch
//	@Tags			Launches
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Launch ID"
//	@Param			request	body		ClaimRequest	true	"Claim key"
//	@Success		200		{object}	Response{data=domain.Launch}
//	@Failure		403		{object}	Response	"Invalid claim key"
//	@Failure		409		{object}	Response	"Already claimed"
//	@Router			/api/launches/{id}/claim [post]
func (h *LaunchesHandler) Claim(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ClaimRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	launch, err := h.launches.Claim(r.Context(), userID, id, req.ClaimKey)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info("launch claimed", zap.Int64("launch_id", id), zap.Int64("user_id", userID))
	writeJSON(w, launch, http.StatusOK)
}

// Import создает пакет бесхозных запусков с ключами (только админ)
//
//	@Summary		Import launches
//	@Description	Create unowned launches, each with a one-time claim key
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ImportRequest	true	"Launches"
//	@Success		201		{object}	Response{data=[]service.ImportedLaunch}
//	@Failure		400		{object}	Response
//	@Failure		403		{object}	Response
//	@Router			/api/admin/launches/import [post]
func (h *LaunchesHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	imported, err := h.launches.Import(r.Context(), req.Launches)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, imported, http.StatusCreated)
}

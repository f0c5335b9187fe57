package http

import (
	"Launchpad-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// CommentsHandler обработчик комментариев к запускам
type CommentsHandler struct {
	comments *service.CommentService
	log      *zap.Logger
}

// NewCommentsHandler создает новый обработчик комментариев
func NewCommentsHandler(comments *service.CommentService, log *zap.Logger) *CommentsHandler {
	return &CommentsHandler{
		comments: comments,
		log:      log,
	}
}

// CommentRequest тело нового комментария
type CommentRequest struct {
	Body string `json:"body"`
}

// List возвращает комментарии запуска, старые первыми
//
//	@Summary		List comments
//	@Tags			Comments
//	@Produce		json
//	@Param			id		path		int	true	"Launch ID"
//	@Param			page	query		int	false	"Page, starting at 1"
//	@Param			limit	query		int	false	"Page size, 1..50"
//	@Success		200		{object}	Response{data=service.CommentPage}
//	@Failure		404		{object}	Response
//	@Router			/api/launches/{id}/comments [get]
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	launchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	page, err := h.comments.List(r.Context(), launchID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

// Create добавляет комментарий
//
//	@Summary		Create comment
//	@Tags			Comments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Launch ID"
//	@Param			request	body		CommentRequest	true	"Comment"
//	@Success		201		{object}	Response{data=domain.Comment}
//	@Failure		400		{object}	Response
//	@Failure		401		{object}	Response
//	@Failure		404		{object}	Response
//	@Router			/api/launches/{id}/comments [post]
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	launchID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, launchID, req.Body)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, comment, http.StatusCreated)
}

// Delete удаляет комментарий автора
//
//	@Summary		Delete comment
//	@Tags			Comments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Comment ID"
//	@Success		200	{object}	Response
//	@Failure		403	{object}	Response
//	@Failure		404	{object}	Response
//	@Router			/api/comments/{id} [delete]
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, map[string]int64{"id": id}, http.StatusOK)
}

package http

import (
	"Launchpad-Backend/internal/objectstore"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// maxUploadBytes лимит multipart запроса, сам файл проверяет Uploader
const maxUploadBytes = 6 << 20

// UploadsHandler обработчик загрузки изображений
type UploadsHandler struct {
	uploader *objectstore.Uploader
	log      *zap.Logger
}

// NewUploadsHandler создает новый обработчик загрузок
func NewUploadsHandler(uploader *objectstore.Uploader, log *zap.Logger) *UploadsHandler {
	return &UploadsHandler{uploader: uploader, log: log}
}

// Upload сохраняет логотип или фон в объектное хранилище
//
//	@Summary		Upload image
//	@Description	Logo up to 2 MiB or background up to 5 MiB; png, jpeg, webp or gif
//	@Tags			Uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kind	formData	string	true	"logo or background"
//	@Param			file	formData	file	true	"Image"
//	@Success		201		{object}	Response{data=objectstore.Object}
//	@Failure		400		{object}	Response
//	@Failure		401		{object}	Response
//	@Failure		413		{object}	Response
//	@Router			/api/uploads [post]
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	object, err := h.uploader.Upload(r.Context(), objectstore.Kind(r.FormValue("kind")), userID, file)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, object, http.StatusCreated)
}

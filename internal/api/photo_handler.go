package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/magicphoto-api/internal/api/shared"
	"github.com/phrazzld/magicphoto-api/internal/domain"
	"github.com/phrazzld/magicphoto-api/internal/platform/filestore"
	"github.com/phrazzld/magicphoto-api/internal/platform/logger"
	"github.com/phrazzld/magicphoto-api/internal/service"
)

// multipartOverhead is the slack allowed on top of the file limit for the
// multipart envelope and the other form fields.
const multipartOverhead = 1 << 20

// Uploader stores user photos.
type Uploader interface {
	SaveUpload(ctx context.Context, data []byte) (*filestore.Upload, error)
}

// PhotoHandler handles upload, generation and polling requests.
type PhotoHandler struct {
	photos         service.PhotoService
	uploads        Uploader
	maxUploadBytes int64
	validator      *validator.Validate
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos service.PhotoService, uploads Uploader, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{
		photos:         photos,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		validator:      newValidator(),
	}
}

// Generate handles POST /api/photo/generate. The task runs asynchronously,
// so a successful submission answers 202 Accepted.
func (h *PhotoHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithErrorCode(http.StatusBadRequest))
		return
	}
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := h.validator.Struct(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	task, err := h.photos.Submit(r.Context(), service.SubmitRequest{
		UserID:   userID,
		PhotoURL: req.PhotoURL,
		Prompt:   req.Prompt,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := GenerateResponse{
		TaskID:        task.ID,
		Status:        task.Status,
		EstimatedTime: task.EstimatedSeconds,
	}
	if task.Status == domain.TaskStatusFailed {
		resp.Message = task.ErrorMessage
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, resp)
}

// GetStatus handles GET /api/photo/status?taskId=.
func (h *PhotoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndQueryUUID(w, r, "taskId")
	if !ok {
		return
	}

	view, err := h.photos.GetStatus(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// GetResult handles GET /api/photo/result?taskId=.
func (h *PhotoHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndQueryUUID(w, r, "taskId")
	if !ok {
		return
	}

	result, err := h.photos.GetResult(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Upload handles POST /api/photo/upload with a multipart "file" and "type".
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, filestore.ErrFileTooLarge, "")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err,
			shared.WithErrorCode(http.StatusBadRequest))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing file", err,
			shared.WithErrorCode(http.StatusBadRequest))
		return
	}
	defer func() { _ = file.Close() }()

	if strings.TrimSpace(r.FormValue("type")) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing image type",
			shared.WithErrorCode(http.StatusBadRequest))
		return
	}
	if !filestore.IsAllowedExtension(header.Filename) ||
		!filestore.IsAllowedImageType(header.Header.Get("Content-Type")) {
		HandleAPIError(w, r, filestore.ErrUnsupportedType, "")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read upload")
		return
	}

	upload, err := h.uploads.SaveUpload(r.Context(), data)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContext(r.Context()).InfoContext(r.Context(), "photo uploaded",
		"file_id", upload.FileID,
		"size", len(data))
	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{URL: upload.URL, FileID: upload.FileID})
}

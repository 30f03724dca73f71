package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextstepz/community/internal/httpx/middleware"
	"github.com/nextstepz/community/internal/httpx/response"
	"github.com/nextstepz/community/internal/storage"
)

// multipartOverhead is room for the form fields around the file part
const multipartOverhead = 1 << 20

// ImageUploader defines the interface for storing post images
type ImageUploader interface {
	Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadOutput, error)
	MaxSize() int64
}

// UploadHandler handles image upload HTTP requests
type UploadHandler struct {
	uploader ImageUploader
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader ImageUploader, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{uploader: uploader, logger: logger}
}

// RegisterRoutes registers upload routes
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireViewer).Post("/uploads", h.Upload())
}

// Upload handles POST /uploads
func (h *UploadHandler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxSize := h.uploader.MaxSize()
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

		if err := r.ParseMultipartForm(maxSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.TooLarge(w, "Ảnh vượt quá dung lượng cho phép")
				return
			}
			response.BadRequest(w, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.BadRequest(w, "missing file in request")
			return
		}
		defer file.Close()

		result, err := h.uploader.Upload(r.Context(), storage.UploadInput{
			OwnerID:     middleware.ViewerID(r.Context()),
			Reader:      file,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Filename:    header.Filename,
		})
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrUnsupportedType):
				response.Error(w, http.StatusUnsupportedMediaType, "Chỉ hỗ trợ ảnh JPEG, PNG, GIF hoặc WebP")
			case errors.Is(err, storage.ErrTooLarge):
				response.TooLarge(w, "Ảnh vượt quá dung lượng cho phép")
			default:
				h.logger.Error("upload failed", "filename", header.Filename, "error", err)
				response.InternalError(w, "failed to upload file")
			}
			return
		}

		response.Created(w, result)
	}
}

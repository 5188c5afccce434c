package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/blob"
	"github.com/tooldesk/tooldesk/backend/errs"
)

const (
	uploadFormField   = "file"
	multipartType     = "multipart/form-data"
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
	filesRoutePrefix  = "/api/files/"
	defaultBinaryType = "application/octet-stream"
	sniffLen          = 512
	fileCacheControl  = "public, max-age=86400"
)

// inlineTypes may be rendered by the browser. Everything else is served as a
// download.
var inlineTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// UploadResponse describes a stored upload
type UploadResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
	URL          string `json:"url"`
}

type fileHandler struct {
	responder      Responder
	logger         zerolog.Logger
	store          blob.Store
	maxUploadBytes int64
}

func newFileHandler(store blob.Store, maxUploadBytes int64) fileHandler {
	logger := log.With().Str("handlerName", "fileHandler").Logger()

	return fileHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		store:          store,
		maxUploadBytes: maxUploadBytes,
	}
}

// upload stores one multipart file under a generated name
// @Summary Upload file
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "Bad Request - No file"
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type - Not multipart"
// @Router /upload [post]
func (h fileHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("file storage", nil))
			return
		}

		if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != multipartType {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(r.Header.Get("Content-Type"), []string{multipartType}))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError(uploadFormField, "is required"))
			return
		}
		defer file.Close()

		if header.Size > h.maxUploadBytes {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxUploadBytes))
			return
		}

		contentType, err := detectContentType(file)
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}

		name := blob.NewName(header.Filename)
		object, err := h.store.Put(r.Context(), name, contentType, file)
		if err != nil {
			h.responder.WriteError(w, errs.NewBlobStoreError("store", err))
			return
		}

		h.logger.Info().
			Str("filename", object.Name).
			Str("originalName", header.Filename).
			Int64("size", object.Size).
			Msg("File uploaded")

		h.responder.WriteJSONStatus(w, http.StatusCreated, UploadResponse{
			Filename:     object.Name,
			OriginalName: header.Filename,
			Size:         object.Size,
			ContentType:  object.ContentType,
			URL:          filesRoutePrefix + object.Name,
		})
	}
}

// detectContentType sniffs the first bytes of the content. The declared type
// and the extension are client input and are ignored. The reader is rewound.
func detectContentType(file io.ReadSeeker) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// servedContentType picks the headers a stored file is served with. Types
// outside inlineTypes go out as an opaque attachment.
func servedContentType(stored string) (contentType string, inline bool) {
	mediaType, _, err := mime.ParseMediaType(stored)
	if err != nil || !inlineTypes[mediaType] {
		return defaultBinaryType, false
	}
	return stored, true
}

// serveFile streams a stored upload
// @Summary Download file
// @Tags Files
// @Param filename path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse "Not Found - File not found"
// @Router /files/{filename} [get]
func (h fileHandler) serveFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.store == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("file storage", nil))
			return
		}

		name := chi.URLParam(r, "filename")
		if !blob.ValidName(name) {
			h.responder.WriteError(w, errs.NewNotFound("file"))
			return
		}

		body, object, err := h.store.Open(r.Context(), name)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidName) {
				h.responder.WriteError(w, errs.NewNotFound("file"))
				return
			}
			h.responder.WriteError(w, errs.NewBlobStoreError("read", err))
			return
		}
		defer body.Close()

		contentType, inline := servedContentType(object.ContentType)
		w.Header().Set("Content-Type", contentType)
		if !inline {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		w.Header().Set("Cache-Control", fileCacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if object.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
		}

		if _, err := io.Copy(w, body); err != nil {
			h.logger.Warn().Err(err).Str("filename", name).Msg("error streaming file")
		}
	}
}

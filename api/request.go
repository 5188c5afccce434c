package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tooldesk/tooldesk/backend/errs"
)

const (
	maxJSONBodyBytes   int64 = 1 << 20
	maxImportBodyBytes int64 = 32 << 20
)

// decodeJSON reads at most limit bytes of JSON from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(limit)
		}
		return errs.NewMalformedPayloadError("request body", err)
	}
	if len(body) == 0 {
		return errs.NewBadRequestError("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errs.NewInvalidFieldError("id", "must be a positive integer")
	}
	return id, nil
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"javasegment/internal/application/common"
	"javasegment/internal/domain/errors/domain"
)

// bodyOverhead leaves room for JSON escaping and the other request fields on top
// of the configured source limit.
const bodyOverhead = 64 * 1024

// decodeJSONBody reads one JSON object from the request body into dst. Bodies over
// the limit map to domain.ErrSourceTooLarge; everything else that fails to decode
// is a validation error on the body.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}, maxSourceBytes int) error {
	if contentType := r.Header.Get("Content-Type"); contentType != "" &&
		!strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return common.NewValidationError("Content-Type", "must be application/json")
	}

	if maxSourceBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxSourceBytes)*2+bodyOverhead)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("request body exceeds %d bytes: %w", maxBytesErr.Limit, domain.ErrSourceTooLarge)
		case errors.Is(err, io.EOF):
			return common.NewValidationError("body", "request body is required")
		default:
			return common.NewValidationError("body", "malformed JSON: "+err.Error())
		}
	}

	if decoder.More() {
		return common.NewValidationError("body", "must contain a single JSON object")
	}
	return nil
}

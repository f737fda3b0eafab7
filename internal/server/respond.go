package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/koustreak/docdeck/internal/logger"
)

// maxBodyBytes caps request bodies. Documents are edited by hand in a
// textarea, so this is generous.
const maxBodyBytes = 16 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Global().ErrorWith("failed to encode response", err, nil)
	}
}

// writeError answers with the error envelope. Server-side failures are
// logged with the request's logger; caller mistakes are not.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, logger.Fields{
			"kind": errs.KindOf(err).String(),
		})
	}
	writeJSON(w, status, errorResponse{Error: errs.Public(err)})
}

// decodeBody reads a JSON request body into v. An empty or malformed body
// is InvalidInput.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.New(errs.ErrKindInvalidInput, "request body is required")
		case errors.As(err, &tooLarge):
			return errs.Newf(errs.ErrKindInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		default:
			return errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
		}
	}
	return nil
}

// param returns a decoded path parameter. chi matches on the escaped path
// when one exists, so names containing "/" or "%" arrive encoded.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// Package httpapi exposes the catalog over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/obs"
)

// envelope is the body of every API response. Empty strings are sent as null.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
	Message *string `json:"message"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteJSON writes a successful envelope carrying data.
func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(w, status, envelope{Success: true, Data: data, Message: nullable(message)})
}

// WriteJSONError writes a failed envelope.
func WriteJSONError(w http.ResponseWriter, status int, errMsg, message string) {
	writeEnvelope(w, status, envelope{Error: nullable(errMsg), Message: nullable(message)})
}

const (
	msgDBUnavailable  = "Database not connected"
	msgEndpoint404    = "Endpoint not found"
	msgInternal       = "Internal server error"
	msgInvalidJSON    = "Invalid JSON body"
	msgBodyTooLarge   = "Request body too large"
	msgProductMissing = "Product not found"
	msgAdMissing      = "Ad not found"
)

// writeError maps a catalog error to a status and envelope. notFound is the
// message for ErrNotFound; summary is used for unexpected failures.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound, summary string) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteJSONError(w, http.StatusBadRequest, ve.Msg, "")
	case errors.Is(err, catalog.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, notFound, "")
	case errors.Is(err, catalog.ErrStoreUnavailable):
		WriteJSONError(w, http.StatusInternalServerError, msgDBUnavailable, "")
	default:
		obs.Logger.Error("request_failed",
			"error", err,
			"summary", summary,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
		WriteJSONError(w, http.StatusInternalServerError, summary, err.Error())
	}
}

// Package handler provides the HTTP handlers for the review API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/review"
)

// ErrorResponse is the body of every non-2xx JSON response. RequestID is set
// on 5xx responses so a client report can be matched to the server log.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// ReviewHandler serves /api/reviews
type ReviewHandler struct {
	service review.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service review.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req review.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return
		}
		loggy.FromContext(r.Context()).Debug("Malformed review request", "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.service.CreateReview(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	resps, err := h.service.GetAllReviews(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resps)
}

// Get handles GET /api/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.GetReviewByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := reviewID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service errors to status codes. Provider and storage
// failures are logged here and reported with a generic message.
func (h *ReviewHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := loggy.FromContext(r.Context())

	var validationErr *review.ValidationError
	var providerErr *review.ProviderError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: validationErr.Fields})
	case errors.Is(err, review.ErrReviewNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &providerErr):
		logger.WithError(err).Error("Review provider call failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:     "failed to generate review",
			RequestID: loggy.GetRequestID(r.Context()),
		})
	default:
		logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:     "internal server error",
			RequestID: loggy.GetRequestID(r.Context()),
		})
	}
}

func reviewID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid review id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggy.Warn("Failed to write JSON response", "error", err)
	}
}

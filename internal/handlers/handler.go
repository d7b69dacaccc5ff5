package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/metrics"
	"github.com/shrimpsizemoose/gradebook/internal/store"
	"github.com/shrimpsizemoose/gradebook/internal/validation"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register mounts every gradebook route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/students", h.guard(h.HandleListStudents))
	mux.HandleFunc("POST /api/v1/students", h.guard(h.HandleCreateStudent))
	mux.HandleFunc("PUT /api/v1/students/{id}", h.guard(h.HandleUpdateStudent))
	mux.HandleFunc("DELETE /api/v1/students/{id}", h.guard(h.HandleDeleteStudent))

	mux.HandleFunc("GET /api/v1/assignments", h.guard(h.HandleListAssignments))
	mux.HandleFunc("POST /api/v1/assignments", h.guard(h.HandleCreateAssignment))
	mux.HandleFunc("PUT /api/v1/assignments/{id}", h.guard(h.HandleUpdateAssignment))
	mux.HandleFunc("DELETE /api/v1/assignments/{id}", h.guard(h.HandleDeleteAssignment))
	mux.HandleFunc("POST /api/v1/assignments/{id}/extend", h.guard(h.HandleExtendDeadline))

	mux.HandleFunc("GET /api/v1/grades", h.guard(h.HandleListGrades))
	mux.HandleFunc("POST /api/v1/grades", h.guard(h.HandleCreateGrade))
	mux.HandleFunc("POST /api/v1/grades/{student}/{assignment}/report", h.guard(h.HandleGradeReport))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

const requestIDHeader = "X-Request-ID"

// guard times the request and rejects callers without the required headers or a valid token.
func (h *Handler) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)

		defer func() {
			duration := time.Since(start)
			metrics.APIRequestDuration.WithLabelValues(
				r.Pattern,
				r.Method,
				strconv.Itoa(rec.status),
			).Observe(duration.Seconds())
			logger.Debug.Printf("[%s] %s %s -> %d in %s", requestID, r.Method, r.URL.Path, rec.status, duration)
		}()

		if !h.service.ValidateHeaders(r.Header) {
			http.Error(rec, "these are not the droids you are looking for", http.StatusForbidden)
			return
		}

		if err := h.service.ValidateAuth(r); err != nil {
			logger.Error.Printf("Auth failed: %v", err)
			http.Error(rec, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(rec, r)
	}
}

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

type resultResponse struct {
	Result int `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, store.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, app.ErrGradeReferenceNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		logger.Error.Printf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// writeResult reports a presence result code: 1 is 200, 0 is 404.
func writeResult(w http.ResponseWriter, code int, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if code == 0 {
		status = http.StatusNotFound
	}
	writeJSON(w, status, resultResponse{Result: code})
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug.Printf("Invalid request body on %s: %v", r.URL.Path, err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeRows(w http.ResponseWriter, rows interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": rows,
	})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"carbonintensity/internal/domain"
)

// maxBodyBytes bounds request bodies; a record is well under 1 KiB
const maxBodyBytes = 64 << 10

const invalidIDMessage = "Validation failed (numeric string is expected)"

// IntensityService is the set of record operations the handler exposes
type IntensityService interface {
	List(ctx context.Context) ([]domain.IntensityRecord, error)
	Create(ctx context.Context, in domain.IntensityInput) (*domain.IntensityRecord, error)
	Update(ctx context.Context, id int64, patch domain.IntensityPatch) (*domain.IntensityRecord, error)
	Remove(ctx context.Context, id int64) (int64, error)
}

// DeletedResponse is returned by a successful delete
type DeletedResponse struct {
	ID int64 `json:"id"`
}

// IntensityHandler handles carbon-intensity API requests
type IntensityHandler struct {
	svc    IntensityService
	logger *slog.Logger
}

// NewIntensityHandler creates a new intensity handler
func NewIntensityHandler(svc IntensityService, logger *slog.Logger) *IntensityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntensityHandler{svc: svc, logger: logger}
}

// List returns every record ordered by from
func (h *IntensityHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		h.internalError(w, "failed to list intensities", err)
		return
	}
	writeJSON(w, records, http.StatusOK)
}

// Create stores a new record
func (h *IntensityHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.decode(w, r)
	if !ok {
		return
	}

	in, err := raw.ValidateCreate()
	if err != nil {
		h.validationError(w, err)
		return
	}

	rec, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.serviceError(w, err, "failed to create intensity")
		return
	}
	writeJSON(w, rec, http.StatusCreated)
}

// Update applies the supplied fields to an existing record
func (h *IntensityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	raw, ok := h.decode(w, r)
	if !ok {
		return
	}

	patch, err := raw.ValidateUpdate()
	if err != nil {
		h.validationError(w, err)
		return
	}

	rec, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		h.serviceError(w, err, "failed to update intensity")
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

// Delete removes a record permanently
func (h *IntensityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Remove(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		// delete reports the bare status text, unlike update
		writeBareError(w, http.StatusNotFound)
		return
	}
	if err != nil {
		h.serviceError(w, err, "failed to delete intensity")
		return
	}
	writeJSON(w, DeletedResponse{ID: deleted}, http.StatusOK)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, invalidIDMessage, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decode reads a JSON object body. An empty body decodes as {}.
func (h *IntensityHandler) decode(w http.ResponseWriter, r *http.Request) (domain.RawIntensity, bool) {
	var raw domain.RawIntensity

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(&raw)
	if err == nil || errors.Is(err, io.EOF) {
		return raw, true
	}

	var (
		typeErr *json.UnmarshalTypeError
		syntax  *json.SyntaxError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		writeError(w, []string{fmt.Sprintf("%s has an invalid type", typeErr.Field)}, http.StatusBadRequest)
	case errors.As(err, &syntax):
		writeError(w, "malformed JSON body", http.StatusBadRequest)
	case errors.As(err, &tooBig):
		writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
	default:
		// unknown fields and other decode failures
		writeError(w, []string{err.Error()}, http.StatusBadRequest)
	}
	return raw, false
}

func (h *IntensityHandler) validationError(w http.ResponseWriter, err error) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		writeError(w, []string(verrs), http.StatusBadRequest)
		return
	}
	writeError(w, err.Error(), http.StatusBadRequest)
}

// serviceError maps the domain error kinds to their status codes; anything
// else is a 500
func (h *IntensityHandler) serviceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, domain.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrDuplicateInterval):
		writeError(w, domain.ErrDuplicateInterval.Error(), http.StatusBadRequest)
	default:
		h.internalError(w, logMsg, err)
	}
}

func (h *IntensityHandler) internalError(w http.ResponseWriter, logMsg string, err error) {
	h.logger.Error(logMsg, "error", err)
	writeBareError(w, http.StatusInternalServerError)
}

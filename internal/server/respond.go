package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"bloodaid/pkg/types"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data  any   `json:"data"`
	Total int64 `json:"total"`
	Page  uint64 `json:"page"`
	Limit uint64 `json:"limit"`
}

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondData(w http.ResponseWriter, status int, data any) {
	s.respondJSON(w, status, dataEnvelope{Data: data})
}

func (s *Service) respondList(w http.ResponseWriter, data any, total int64, page, limit uint64) {
	s.respondJSON(w, http.StatusOK, listEnvelope{Data: data, Total: total, Page: page, Limit: limit})
}

// respondError maps the internal error taxonomy onto HTTP statuses. The
// caller only ever sees the taxonomy message; wrapped internals stay in
// the logs.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		s.respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "validation failed", Fields: validationErr.Fields})
		return
	}

	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		s.respondJSON(w, http.StatusUnauthorized, errorEnvelope{Error: "unauthorized"})
	case errors.Is(err, types.ErrUserBlocked):
		s.respondJSON(w, http.StatusForbidden, errorEnvelope{Error: "user blocked"})
	case errors.Is(err, types.ErrForbidden):
		s.respondJSON(w, http.StatusForbidden, errorEnvelope{Error: "access denied"})
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrRequestNotFound),
		errors.Is(err, types.ErrBlogNotFound),
		errors.Is(err, types.ErrFundNotFound):
		s.respondJSON(w, http.StatusNotFound, errorEnvelope{Error: "not found"})
	case errors.Is(err, types.ErrUserExists):
		s.respondJSON(w, http.StatusConflict, errorEnvelope{Error: "user already exists"})
	case errors.Is(err, types.ErrDuplicateTransaction):
		s.respondJSON(w, http.StatusConflict, errorEnvelope{Error: "duplicate transaction"})
	case errors.Is(err, types.ErrVerificationFailed):
		s.respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "payment verification failed"})
	case errors.Is(err, types.ErrAmountMismatch):
		s.respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "amount does not match verified payment"})
	case errors.Is(err, types.ErrRequestNotClaimable):
		s.respondJSON(w, http.StatusConflict, errorEnvelope{Error: "donation request is not pending"})
	default:
		s.logger.WithError(err).Error("unexpected error")
		s.respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal server error"})
	}
}

func (s *Service) decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationError("body", "invalid JSON payload")
	}

	if err := s.validate.Struct(dst); err != nil {
		var invalid *types.ValidationError
		if toValidationError(err, &invalid) {
			return invalid
		}
		return types.NewValidationError("body", "invalid payload")
	}

	return nil
}

// decodeBodyLoose decodes JSON without struct validation, for bodies the
// handler validates field by field.
func (s *Service) decodeBodyLoose(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewValidationError("body", "invalid JSON payload")
	}
	return nil
}

package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/api/authz"
	"github.com/codr1/Courtside/internal/payments"
	"github.com/codr1/Courtside/internal/pricing"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and reports the first failing field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return FieldError{Field: "body", Reason: "is invalid"}
	}
	fe := verrs[0]
	return FieldError{Field: fieldPath(fe), Reason: validationReason(fe)}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or greater"
	case "lte":
		return "must be " + fe.Param() + " or less"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must match " + fe.Param()
	case "excluded_with":
		return "cannot be combined with " + fe.Param()
	case "email":
		return "must be an email address"
	}
	return "is invalid"
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// DecodeAndValidate decodes a JSON body and runs struct validation on it.
// Errors are already shaped for WriteError.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return Validate(dst)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as a 500 without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	if writeErr := WriteJSON(w, status, body); writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

func classify(err error) (int, ErrorResponse) {
	var handlerErr HandlerError
	var fieldErr FieldError
	var validationErr *payments.ValidationError
	var conflictErr *payments.StateConflictError

	switch {
	case errors.As(err, &handlerErr):
		return handlerErr.Status, ErrorResponse{Error: handlerErr.Message}
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, ErrorResponse{Error: fieldErr.Error(), Field: fieldErr.Field}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: validationErr.Error(), Field: validationErr.Field}
	case errors.As(err, &conflictErr):
		return http.StatusBadRequest, ErrorResponse{Error: conflictErr.Error()}
	case errors.Is(err, payments.ErrPaymentNotFound),
		errors.Is(err, payments.ErrReservationNotFound),
		errors.Is(err, payments.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, payments.ErrPermissionDenied), errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden"}
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"}
	case errors.Is(err, pricing.ErrInvalidSlot),
		errors.Is(err, pricing.ErrInvalidDuration),
		errors.Is(err, pricing.ErrPastClosing),
		errors.Is(err, pricing.ErrNoPlayers):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

// ActorFromRequest returns the caller as a payment actor.
func ActorFromRequest(r *http.Request) (payments.Actor, error) {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		return payments.Actor{}, err
	}
	return payments.Actor{UserID: user.ID, Role: payments.Role(strings.ToLower(user.Role))}, nil
}

// RequireRole writes the rejection and returns false when the caller lacks
// every one of roles.
func RequireRole(w http.ResponseWriter, r *http.Request, roles ...string) bool {
	if err := authz.RequireRole(r.Context(), roles...); err != nil {
		logEvent := log.Ctx(r.Context()).Warn().Strs("roles", roles)
		if user := authz.UserFromContext(r.Context()); user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Err(err).Msg("Access denied")
		WriteError(w, r, err)
		return false
	}
	return true
}

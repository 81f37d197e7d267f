package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"barberia/internal/apperr"
	"barberia/internal/logging"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto the failure envelope. Internal errors are logged
// and, in production, replaced by a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindInternal {
		writeJSON(w, statusFor(e.Kind), envelope{Error: &errorBody{Message: e.Message, Errors: e.Fields}})
		return
	}

	logging.FromContext(r.Context(), &s.logger).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")

	msg := err.Error()
	if s.cfg.App.IsProduction() {
		msg = "Error interno del servidor"
	}
	writeJSON(w, http.StatusInternalServerError, envelope{Error: &errorBody{Message: msg}})
}

// decode reads a JSON body into dst and runs its validation tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("El cuerpo de la petición está vacío")
		}
		return apperr.Wrap(apperr.Validation("JSON inválido"), err)
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperr.ValidationFields(fields[0].Message, fields)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es obligatorio", name)
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", name, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s tiene un formato inválido (%s)", name, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s debe ser al menos %s", name, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s debe ser como máximo %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", name, fe.Param())
	case "dive":
		return fmt.Sprintf("%s contiene elementos inválidos", name)
	default:
		return fmt.Sprintf("%s no es válido", name)
	}
}

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"barberia/internal/apperr"
	"barberia/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(apperr.KindValidation))
	assert.Equal(t, http.StatusUnauthorized, statusFor(apperr.KindUnauthorized))
	assert.Equal(t, http.StatusForbidden, statusFor(apperr.KindForbidden))
	assert.Equal(t, http.StatusNotFound, statusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.KindInternal))
}

func TestWriteErrorSanitizesInProduction(t *testing.T) {
	for env, want := range map[string]string{
		"production":  "Error interno del servidor",
		"development": "pq: connection refused",
	} {
		s := &Server{cfg: &config.Config{App: config.AppConfig{Environment: env}}, logger: zerolog.Nop()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)

		s.writeError(rec, req, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":{"message":"`+want+`"}}`, rec.Body.String())
	}
}

func TestWriteErrorKeepsFieldErrors(t *testing.T) {
	s := &Server{cfg: &config.Config{}, logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	s.writeError(rec, req, apperr.ValidationFields("bad", []apperr.FieldError{{Field: "date", Message: "bad"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":{"message":"bad","errors":[{"field":"date","message":"bad"}]}}`, rec.Body.String())
}

func TestValidateStructMessages(t *testing.T) {
	err := validateStruct(&cartRequest{CustomerName: "Ana", CustomerPhone: "1", CartItems: []cartItemRequest{{Type: "haircut", ID: "x"}}})
	e, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "cartItems[0].type", e.Fields[0].Field)
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	s := &Server{cfg: &config.Config{}, logger: zerolog.Nop()}
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", clientIP(req))
}

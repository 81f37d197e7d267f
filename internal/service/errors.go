package service

import (
	"barberia/internal/apperr"
)

var (
	ErrInvalidDate           = apperr.Validation("La fecha debe tener el formato YYYY-MM-DD")
	ErrInvalidTime           = apperr.Validation("La hora debe tener el formato HH:MM")
	ErrPastDate              = apperr.Validation("No se pueden hacer reservas en fechas u horas pasadas")
	ErrDateTooFar            = apperr.Validation("La fecha seleccionada está demasiado lejos")
	ErrInvalidStatus         = apperr.Validation("Estado de reserva no válido")
	ErrInvalidDeliveryStatus = apperr.Validation("Estado de entrega no válido")
	ErrInvalidItemType       = apperr.Validation("Tipo de item no válido")
	ErrInvalidQuantity       = apperr.Validation("La cantidad debe ser mayor que 0")
	ErrEmptyCartRequest      = apperr.Validation("El carrito está vacío")
	ErrMissingService        = apperr.Validation("Debe seleccionar un servicio")

	ErrInvalidCredentials = apperr.Unauthorized("Usuario o contraseña incorrectos")
	ErrInvalidToken       = apperr.Unauthorized("Sesión inválida o expirada")
	ErrTooManyAttempts    = apperr.Validation("Demasiados intentos de inicio de sesión. Intenta más tarde.")
	ErrWeakPassword       = apperr.Validation("La contraseña debe tener al menos 8 caracteres")
)

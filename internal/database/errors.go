package database

import (
	"fmt"

	"barberia/internal/apperr"
	"barberia/internal/models"
)

var (
	ErrSlotTaken       = apperr.Validation("El horario seleccionado ya está ocupado. Por favor elige otro horario.")
	ErrConcurrentWrite = apperr.Validation("La operación entró en conflicto con otra solicitud. Intenta de nuevo.")
	ErrUnknownBarber   = apperr.Validation("El barbero seleccionado no existe")

	ErrInsufficientStock     = apperr.Validation("Stock insuficiente")
	ErrTooManyProducts       = apperr.Validationf("No se pueden registrar más de %d productos", models.MaxProducts)
	ErrTooManyActiveProducts = apperr.Validationf("Solo se pueden mostrar %d productos en la página", models.MaxActivePageProducts)
	ErrDuplicateCode         = apperr.Validation("Ya existe un código de descuento con ese nombre")
	ErrDuplicateUsername     = apperr.Validation("El nombre de usuario ya existe")
	ErrNotProductInvoice     = apperr.Validation("Solo las facturas de productos tienen estado de entrega")
	ErrEmptyCart             = apperr.Validation("No se pudo crear ninguna reserva")
	ErrSlotRequired          = apperr.Validation("Los servicios y ofertas requieren fecha y hora")

	ErrReservationNotFound = apperr.NotFound("Reserva no encontrada")
	ErrProductNotFound     = apperr.NotFound("Producto no encontrado")
	ErrServiceNotFound     = apperr.NotFound("Servicio no encontrado")
	ErrBarberNotFound      = apperr.NotFound("Barbero no encontrado")
	ErrOfferNotFound       = apperr.NotFound("Oferta no encontrada")
	ErrDiscountNotFound    = apperr.NotFound("Código de descuento no encontrado")
	ErrUserNotFound        = apperr.NotFound("Usuario no encontrado")
	ErrSettingNotFound     = apperr.NotFound("Configuración no encontrada")
)

// stockError names the product in the message while matching ErrInsufficientStock.
func stockError(name string, available int) error {
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: fmt.Sprintf("Stock insuficiente para %s (disponible: %d)", name, available),
		Err:     ErrInsufficientStock,
	}
}

// conflictError maps serialization failures of a transaction to base.
func conflictError(base *apperr.Error, err error) error {
	if isSerializationFailure(err) {
		return apperr.Wrap(base, err)
	}
	return err
}

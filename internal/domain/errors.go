package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Taxonomía: errores de validación (petición mal formada, nunca se reintentan),
// rechazos de regla de negocio ("no" legítimos, no bugs), y el error transitorio
// de concurrencia, que sí es seguro reintentar con una lectura fresca.
var (
	// Validación
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidMovementRequest = errors.New("solicitud de movimiento inválida")
	ErrAmbiguousOrigin        = errors.New("el lote tiene existencias en más de una ubicación: especifique el origen")

	// Reglas de negocio
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInsufficientStock      = errors.New("existencias insuficientes")
	ErrInvalidStateTransition = errors.New("el movimiento no está en un estado que permita la transición")
	ErrDuplicateActiveRecord  = errors.New("ya existe un registro de inventario activo para esa ubicación")
	ErrNonZeroStock           = errors.New("el registro aún tiene existencias")
	ErrDestinationNotFound    = errors.New("el registro de inventario destino no existe")
	ErrNegativeStock          = errors.New("la operación dejaría existencias negativas")

	// Concurrencia (transitorio: reintentar con lectura fresca)
	ErrConcurrentModification = errors.New("el registro fue modificado por otra operación")

	// Borde de autenticación
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

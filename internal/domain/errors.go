package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los errores de configuración (método o costo estándar ausente) se
// distinguen de los errores de datos (stock insuficiente) para que el
// caller pueda mostrar mensajes distintos.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrAmountOverflow      = errors.New("desbordamiento aritmético en montos")
	ErrMethodNotConfigured = errors.New("método de valoración no configurado")
	ErrStandardCostMissing = errors.New("costo estándar no configurado para el producto")
)

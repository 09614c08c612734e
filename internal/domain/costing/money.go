package costing

import (
	"math"

	"github.com/jhoicas/costing-engine/internal/domain"
)

// Aritmética de centavos con chequeo de desbordamiento. Un overflow se
// reporta como domain.ErrAmountOverflow, nunca se satura en silencio.

// MulCents multiplica cantidad por costo unitario (ambos no negativos).
func MulCents(qty, unitCost int64) (int64, error) {
	if qty < 0 || unitCost < 0 {
		return 0, domain.ErrInvalidInput
	}
	if qty == 0 || unitCost == 0 {
		return 0, nil
	}
	if qty > math.MaxInt64/unitCost {
		return 0, domain.ErrAmountOverflow
	}
	return qty * unitCost, nil
}

// AddCents suma dos montos no negativos.
func AddCents(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, domain.ErrInvalidInput
	}
	if a > math.MaxInt64-b {
		return 0, domain.ErrAmountOverflow
	}
	return a + b, nil
}

package repository

import (
	"context"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// ValuationSettingRepository puerto de persistencia para la configuración de
// método por alcance (DIP).
type ValuationSettingRepository interface {
	// Get devuelve la configuración activa del alcance o nil si no existe.
	Get(ctx context.Context, tenantID, scopeKind, scopeTarget string) (*entity.ValuationSetting, error)
	// Upsert crea o reemplaza la configuración del alcance (nunca se borra,
	// solo se supersede).
	Upsert(ctx context.Context, setting *entity.ValuationSetting) error
}

// StandardCostRepository puerto de persistencia del costo estándar por producto.
type StandardCostRepository interface {
	Get(ctx context.Context, tenantID, productID string) (*entity.StandardCost, error)
	Upsert(ctx context.Context, cost *entity.StandardCost) error
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costing-engine/internal/domain/entity"
)

// LandedCostRepository puerto de persistencia de documentos de costos en
// destino, sus líneas y sus repartos.
type LandedCostRepository interface {
	Create(ctx context.Context, lc *entity.LandedCost) error
	// GetByID devuelve nil si el documento no existe para el tenant (el
	// acceso cruzado entre tenants nunca revela existencia).
	GetByID(ctx context.Context, tenantID, id string) (*entity.LandedCost, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.LandedCost, error)
	UpdateStatus(ctx context.Context, tenantID, id, status string, postedAt *time.Time) error
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.LandedCost, error)

	AddLine(ctx context.Context, line *entity.LandedCostLine) error
	ListLines(ctx context.Context, tenantID, landedCostID string) ([]*entity.LandedCostLine, error)

	// ReplaceAllocations borra todos los repartos previos del documento e
	// inserta los nuevos, dentro de la transacción vigente (recomputar en
	// Draft nunca acumula duplicados).
	ReplaceAllocations(ctx context.Context, tenantID, landedCostID string, allocs []*entity.LandedCostAllocation) error
	ListAllocations(ctx context.Context, tenantID, landedCostID string) ([]*entity.LandedCostAllocation, error)
}

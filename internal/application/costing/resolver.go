package costing

import (
	"context"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// MethodResolver determina el método de costeo efectivo para un
// (tenant, producto) con precedencia product > category > tenant_default.
// Sin efectos secundarios. Si no hay configuración en ningún alcance, falla
// con ErrMethodNotConfigured: no existe un método por defecto implícito.
type MethodResolver struct {
	settings repository.ValuationSettingRepository
}

// NewMethodResolver construye el resolver.
func NewMethodResolver(settings repository.ValuationSettingRepository) *MethodResolver {
	return &MethodResolver{settings: settings}
}

// Resolve devuelve el método efectivo. categoryID puede ser vacío, en cuyo
// caso se omite el nivel de categoría.
func (r *MethodResolver) Resolve(ctx context.Context, tenantID, productID, categoryID string) (string, error) {
	if tenantID == "" || productID == "" {
		return "", domain.ErrInvalidInput
	}

	if s, err := r.settings.Get(ctx, tenantID, entity.ScopeProduct, productID); err != nil {
		return "", err
	} else if s != nil {
		return s.Method, nil
	}

	if categoryID != "" {
		if s, err := r.settings.Get(ctx, tenantID, entity.ScopeCategory, categoryID); err != nil {
			return "", err
		} else if s != nil {
			return s.Method, nil
		}
	}

	if s, err := r.settings.Get(ctx, tenantID, entity.ScopeTenantDefault, ""); err != nil {
		return "", err
	} else if s != nil {
		return s.Method, nil
	}

	return "", domain.ErrMethodNotConfigured
}

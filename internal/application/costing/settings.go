package costing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costing-engine/internal/domain"
	"github.com/jhoicas/costing-engine/internal/domain/entity"
	"github.com/jhoicas/costing-engine/internal/domain/repository"
)

// SettingsUseCase administra la configuración de método de valoración por
// alcance y los costos estándar por producto.
type SettingsUseCase struct {
	settings  repository.ValuationSettingRepository
	standards repository.StandardCostRepository
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(settings repository.ValuationSettingRepository, standards repository.StandardCostRepository) *SettingsUseCase {
	return &SettingsUseCase{settings: settings, standards: standards}
}

// ConfigureMethod fija el método de valoración para un alcance. El alcance
// tenant_default no lleva objetivo; category y product lo exigen.
func (uc *SettingsUseCase) ConfigureMethod(ctx context.Context, tenantID, scopeKind, scopeTarget, method string) (*entity.ValuationSetting, error) {
	if tenantID == "" || !entity.ValidMethod(method) {
		return nil, domain.ErrInvalidInput
	}
	switch scopeKind {
	case entity.ScopeTenantDefault:
		if scopeTarget != "" {
			return nil, domain.ErrInvalidInput
		}
	case entity.ScopeCategory, entity.ScopeProduct:
		if scopeTarget == "" {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	setting := &entity.ValuationSetting{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ScopeKind:   scopeKind,
		ScopeTarget: scopeTarget,
		Method:      method,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// GetMethod devuelve el método efectivo para un producto, resolviendo la
// precedencia producto > categoría > default del tenant.
func (uc *SettingsUseCase) GetMethod(ctx context.Context, tenantID, productID, categoryID string) (string, error) {
	resolver := NewMethodResolver(uc.settings)
	return resolver.Resolve(ctx, tenantID, productID, categoryID)
}

// SetStandardCost fija el costo estándar en centavos de un producto.
func (uc *SettingsUseCase) SetStandardCost(ctx context.Context, tenantID, productID string, unitCost int64) (*entity.StandardCost, error) {
	if tenantID == "" || productID == "" || unitCost <= 0 {
		return nil, domain.ErrInvalidInput
	}
	std := &entity.StandardCost{
		TenantID:  tenantID,
		ProductID: productID,
		UnitCost:  unitCost,
		UpdatedAt: time.Now().UTC(),
	}
	if err := uc.standards.Upsert(ctx, std); err != nil {
		return nil, err
	}
	return std, nil
}

// GetStandardCost devuelve el costo estándar vigente, ErrNotFound si no existe.
func (uc *SettingsUseCase) GetStandardCost(ctx context.Context, tenantID, productID string) (*entity.StandardCost, error) {
	if tenantID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	std, err := uc.standards.Get(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if std == nil {
		return nil, domain.ErrNotFound
	}
	return std, nil
}

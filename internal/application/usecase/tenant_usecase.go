package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// TenantUseCase alta, consulta y cambio de plan de tenants.
// Los tenants nunca se eliminan.
type TenantUseCase struct {
	repo repository.TenantRepository
}

// NewTenantUseCase construye el caso de uso.
func NewTenantUseCase(repo repository.TenantRepository) *TenantUseCase {
	return &TenantUseCase{repo: repo}
}

// Create crea un tenant con nombre único global. Plan FREE por defecto.
func (uc *TenantUseCase) Create(ctx context.Context, in dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	plan := in.Plan
	if plan == "" {
		plan = entity.PlanFree
	}
	if !entity.ValidPlan(plan) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	tenant := &entity.Tenant{
		ID:        uuid.New().String(),
		Name:      name,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return toTenantResponse(tenant), nil
}

// GetByID obtiene un tenant por ID.
func (uc *TenantUseCase) GetByID(ctx context.Context, id string) (*dto.TenantResponse, error) {
	tenant, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return toTenantResponse(tenant), nil
}

// UpdatePlan cambia el plan del tenant (FREE <-> PRO). El gating por plan se
// evalúa por request, así que el cambio surte efecto en la siguiente petición.
func (uc *TenantUseCase) UpdatePlan(ctx context.Context, id string, in dto.UpdateTenantPlanRequest) (*dto.TenantResponse, error) {
	if !entity.ValidPlan(in.Plan) {
		return nil, domain.ErrInvalidInput
	}
	tenant, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.UpdatePlan(ctx, id, in.Plan); err != nil {
		return nil, err
	}
	tenant.Plan = in.Plan
	return toTenantResponse(tenant), nil
}

// List devuelve tenants con paginación.
func (uc *TenantUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TenantResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTenantResponse(t))
	}
	return &dto.TenantListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ResolvePlan devuelve el plan actual del tenant; lo usa el middleware de
// identidad en cada request para no cachear el plan en el token.
func (uc *TenantUseCase) ResolvePlan(ctx context.Context, tenantID string) (string, error) {
	tenant, err := uc.repo.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant == nil {
		return "", domain.ErrUnauthorized
	}
	return tenant.Plan, nil
}

func toTenantResponse(t *entity.Tenant) *dto.TenantResponse {
	if t == nil {
		return nil
	}
	return &dto.TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Plan:      t.Plan,
		CreatedAt: t.CreatedAt,
	}
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jvalencia-dev/almacen-api/internal/application/dto"
	"github.com/jvalencia-dev/almacen-api/internal/application/policy"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// MaterialUseCase casos de uso para materiales: alta (con cupo de plan),
// catálogo, detalle con historial reciente y borrado lógico.
// El stock NO se toca aquí; solo lo muta el ledger.
type MaterialUseCase struct {
	repo     repository.MaterialRepository
	txRepo   repository.TransactionRepository
	txRunner TxRunner
	gate     *policy.Gate
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(
	repo repository.MaterialRepository,
	txRepo repository.TransactionRepository,
	txRunner TxRunner,
	gate *policy.Gate,
) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, txRepo: txRepo, txRunner: txRunner, gate: gate}
}

// Create crea un material con stock cero. Solo ADMIN. Para tenants FREE el
// conteo del cupo y el insert corren en la misma transacción, así dos
// creaciones concurrentes en el borde del límite no pasan ambas.
func (uc *MaterialUseCase) Create(ctx context.Context, rc entity.RequestContext, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := uc.gate.Authorize(policy.ActionCreateMaterial, rc); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	if name == "" || unit == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	material := &entity.Material{
		ID:           uuid.New().String(),
		TenantID:     rc.TenantID,
		Name:         name,
		Unit:         unit,
		CurrentStock: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := uc.txRunner.Run(ctx, func(
		materials repository.MaterialRepository,
		_ repository.TransactionRepository,
	) error {
		if err := uc.gate.CheckMaterialQuota(ctx, rc, materials); err != nil {
			return err
		}
		return materials.Create(ctx, material)
	})
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene un material activo del tenant con sus últimas 10 transacciones.
// Inexistente, ajeno o borrado => ErrNotFound, indistinguibles.
func (uc *MaterialUseCase) GetByID(ctx context.Context, rc entity.RequestContext, id string) (*dto.MaterialDetailResponse, error) {
	material, err := uc.repo.GetActive(ctx, rc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrNotFound
	}
	recent, err := uc.txRepo.ListRecentByMaterial(ctx, rc.TenantID, id, 10)
	if err != nil {
		return nil, err
	}
	out := &dto.MaterialDetailResponse{
		MaterialResponse:   *toMaterialResponse(material),
		RecentTransactions: make([]dto.TransactionResponse, 0, len(recent)),
	}
	for _, tx := range recent {
		out.RecentTransactions = append(out.RecentTransactions, toTransactionResponse(tx))
	}
	return out, nil
}

// List lista materiales activos del tenant, filtro opcional por nombre
// (substring) y unidad (exacto), ambos case-insensitive, created_at DESC.
func (uc *MaterialUseCase) List(ctx context.Context, rc entity.RequestContext, in dto.ListMaterialsRequest) (*dto.MaterialListResponse, error) {
	in.DefaultPage()
	filters := repository.MaterialFilters{
		Name: strings.TrimSpace(in.Name),
		Unit: strings.TrimSpace(in.Unit),
	}
	list, err := uc.repo.ListByTenant(ctx, rc.TenantID, filters, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// SoftDelete marca el material como borrado. Solo ADMIN. Un segundo borrado
// falla con ErrNotFound, igual que un material inexistente o ajeno: "ya
// borrado" no es observable como estado distinto. El historial queda intacto.
func (uc *MaterialUseCase) SoftDelete(ctx context.Context, rc entity.RequestContext, id string) (*dto.MaterialResponse, error) {
	if err := uc.gate.Authorize(policy.ActionDeleteMaterial, rc); err != nil {
		return nil, err
	}
	deleted, err := uc.repo.SoftDelete(ctx, rc.TenantID, id, time.Now())
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, domain.ErrNotFound
	}
	return toMaterialResponse(deleted), nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Name:         m.Name,
		Unit:         m.Unit,
		CurrentStock: m.CurrentStock,
		DeletedAt:    m.DeletedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func toTransactionResponse(t *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                  t.ID,
		MaterialID:          t.MaterialID,
		Type:                t.Type,
		Quantity:            t.Quantity,
		PreTransactionStock: t.PreTransactionStock,
		CreatedAt:           t.CreatedAt,
		CreatedBy:           t.CreatedBy,
	}
}

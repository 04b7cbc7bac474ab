package ledger_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvalencia-dev/almacen-api/internal/application/ledger"
	"github.com/jvalencia-dev/almacen-api/internal/application/policy"
	"github.com/jvalencia-dev/almacen-api/internal/domain"
	"github.com/jvalencia-dev/almacen-api/internal/domain/entity"
	"github.com/jvalencia-dev/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// memStore emula la base: un mapa de materiales y el ledger append-only.
// memTxRunner emula la transacción con lock + snapshot: el mutex serializa
// las secciones críticas (como el FOR UPDATE sobre la fila) y si fn falla
// se restaura el snapshot (como el Rollback).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	materials map[string]*entity.Material
	txs       []*entity.Transaction
}

func newMemStore() *memStore {
	return &memStore{materials: make(map[string]*entity.Material)}
}

func (s *memStore) snapshot() (map[string]*entity.Material, []*entity.Transaction) {
	mats := make(map[string]*entity.Material, len(s.materials))
	for id, m := range s.materials {
		cp := *m
		mats[id] = &cp
	}
	txs := make([]*entity.Transaction, len(s.txs))
	copy(txs, s.txs)
	return mats, txs
}

type memMaterialRepo struct{ s *memStore }

func (r *memMaterialRepo) LockTenant(context.Context, string) error {
	// El mutex del runner ya serializa la sección crítica
	return nil
}

func (r *memMaterialRepo) Create(_ context.Context, m *entity.Material) error {
	for _, existing := range r.s.materials {
		if existing.TenantID == m.TenantID && !existing.Deleted() && strings.EqualFold(existing.Name, m.Name) {
			return domain.ErrDuplicate
		}
	}
	cp := *m
	r.s.materials[m.ID] = &cp
	return nil
}

func (r *memMaterialRepo) get(tenantID, id string) *entity.Material {
	m, ok := r.s.materials[id]
	if !ok || m.TenantID != tenantID || m.Deleted() {
		return nil
	}
	cp := *m
	return &cp
}

func (r *memMaterialRepo) GetActive(_ context.Context, tenantID, id string) (*entity.Material, error) {
	return r.get(tenantID, id), nil
}

func (r *memMaterialRepo) GetActiveForUpdate(_ context.Context, tenantID, id string) (*entity.Material, error) {
	return r.get(tenantID, id), nil
}

func (r *memMaterialRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal, at time.Time) error {
	m, ok := r.s.materials[id]
	if !ok {
		return errors.New("material no existe")
	}
	m.CurrentStock = stock
	m.UpdatedAt = at
	return nil
}

func (r *memMaterialRepo) SoftDelete(_ context.Context, tenantID, id string, at time.Time) (*entity.Material, error) {
	m, ok := r.s.materials[id]
	if !ok || m.TenantID != tenantID || m.Deleted() {
		return nil, nil
	}
	m.DeletedAt = &at
	cp := *m
	return &cp, nil
}

func (r *memMaterialRepo) ListByTenant(_ context.Context, tenantID string, filters repository.MaterialFilters, limit, offset int) ([]*entity.Material, error) {
	var out []*entity.Material
	for _, m := range r.s.materials {
		if m.TenantID != tenantID || m.Deleted() {
			continue
		}
		if filters.Name != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(filters.Name)) {
			continue
		}
		if filters.Unit != "" && !strings.EqualFold(m.Unit, filters.Unit) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMaterialRepo) CountActiveByTenant(_ context.Context, tenantID string) (int, error) {
	count := 0
	for _, m := range r.s.materials {
		if m.TenantID == tenantID && !m.Deleted() {
			count++
		}
	}
	return count, nil
}

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	cp := *tx
	r.s.txs = append(r.s.txs, &cp)
	return nil
}

func (r *memTransactionRepo) ListRecentByMaterial(_ context.Context, tenantID, materialID string, limit int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, tx := range r.s.txs {
		if tx.TenantID == tenantID && tx.MaterialID == materialID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memTxRunner struct{ s *memStore }

func (tr *memTxRunner) Run(_ context.Context, fn func(repository.MaterialRepository, repository.TransactionRepository) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()

	mats, txs := tr.s.snapshot()
	err := fn(&memMaterialRepo{s: tr.s}, &memTransactionRepo{s: tr.s})
	if err != nil {
		// Rollback: se descarta todo lo que hizo fn
		tr.s.materials = mats
		tr.s.txs = txs
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTenantID  = "tenant-a"
	otherTenantID = "tenant-b"
	testUserID    = "user-1"
)

func rcAdmin() entity.RequestContext {
	return entity.RequestContext{
		TenantID: testTenantID,
		UserID:   testUserID,
		Role:     entity.RoleAdmin,
		Plan:     entity.PlanFree,
	}
}

func buildEngine() (*ledger.UseCase, *memStore) {
	store := newMemStore()
	uc := ledger.New(&memTxRunner{s: store}, policy.New())
	return uc, store
}

func seedMaterial(store *memStore, id, tenantID string, stock decimal.Decimal) {
	now := time.Now()
	store.materials[id] = &entity.Material{
		ID:           id,
		TenantID:     tenantID,
		Name:         "Cemento " + id,
		Unit:         "kg",
		CurrentStock: stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func apply(t *testing.T, uc *ledger.UseCase, materialID, typ, qty string) *ledger.MovementResult {
	t.Helper()
	res, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: materialID,
		Type:       typ,
		Quantity:   d(qty),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement — casos felices
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_EntradaIncrementaStock(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, decimal.Zero)

	res := apply(t, uc, "m1", entity.MovementTypeIN, "100")

	assert.True(t, res.Material.CurrentStock.Equal(d("100")),
		"IN 100 sobre stock 0 debe dejar stock 100")
	assert.True(t, res.Transaction.PreTransactionStock.Equal(decimal.Zero),
		"el pre-stock de la transacción debe ser el stock previo (0)")
	assert.Equal(t, entity.MovementTypeIN, res.Transaction.Type)
	assert.Equal(t, testUserID, res.Transaction.CreatedBy)
	assert.True(t, store.materials["m1"].CurrentStock.Equal(d("100")),
		"el stock persistido debe coincidir con el devuelto")
	assert.Len(t, store.txs, 1, "debe quedar exactamente una transacción en el ledger")
}

func TestApplyMovement_SalidaDecrementaStock(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("100"))

	res := apply(t, uc, "m1", entity.MovementTypeOUT, "30")

	assert.True(t, res.Material.CurrentStock.Equal(d("70")))
	assert.True(t, res.Transaction.PreTransactionStock.Equal(d("100")),
		"el pre-stock debe ser el stock ANTES de aplicar la salida")
}

// El historial debe permitir reconstruir el stock: para cada transacción,
// pre + cantidad con signo == pre de la siguiente, y la última cierra en
// el CurrentStock del material.
func TestApplyMovement_HistorialReconstruyeStock(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, decimal.Zero)

	apply(t, uc, "m1", entity.MovementTypeIN, "100")
	apply(t, uc, "m1", entity.MovementTypeOUT, "30")
	apply(t, uc, "m1", entity.MovementTypeIN, "5")

	require.Len(t, store.txs, 3)
	running := decimal.Zero
	for _, tx := range store.txs {
		assert.True(t, tx.PreTransactionStock.Equal(running),
			"el pre-stock de cada transacción debe igualar el acumulado previo")
		running = running.Add(tx.SignedQuantity())
	}
	assert.True(t, running.Equal(d("75")))
	assert.True(t, store.materials["m1"].CurrentStock.Equal(d("75")),
		"el stock cacheado debe igualar la suma con signo del ledger")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement — stock insuficiente
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_StockInsuficiente_NoMutaNada(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("100"))
	apply(t, uc, "m1", entity.MovementTypeOUT, "30") // queda 70

	_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: "m1",
		Type:       entity.MovementTypeOUT,
		Quantity:   d("1000"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr, "el error debe exponer los detalles del rechazo")
	assert.True(t, insErr.Available.Equal(d("70")), "available debe ser el stock actual (70)")
	assert.True(t, insErr.Requested.Equal(d("1000")))
	assert.Equal(t, "kg", insErr.Unit)

	// Nada mutó: ni el stock ni el ledger
	assert.True(t, store.materials["m1"].CurrentStock.Equal(d("70")),
		"un movimiento rechazado no debe tocar el stock")
	assert.Len(t, store.txs, 1, "un movimiento rechazado no debe dejar transacción")
}

func TestApplyMovement_SalidaExacta_DejaStockCero(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("50"))

	res := apply(t, uc, "m1", entity.MovementTypeOUT, "50")

	assert.True(t, res.Material.CurrentStock.IsZero(),
		"OUT por el stock exacto debe ser válido y dejar stock 0")
	assert.True(t, store.materials["m1"].CurrentStock.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement — validación y autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_TipoInvalido_RetornaInvalidInput(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("10"))

	_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: "m1",
		Type:       "TRANSFER",
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyMovement_CantidadNoPositiva_RetornaInvalidInput(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("10"))

	for _, qty := range []string{"0", "-5"} {
		_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
			MaterialID: "m1",
			Type:       entity.MovementTypeIN,
			Quantity:   d(qty),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %s debe rechazarse", qty)
	}
	assert.Empty(t, store.txs)
}

func TestApplyMovement_SinIdentidad_RetornaUnauthorized(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("10"))

	_, err := uc.ApplyMovement(context.Background(), entity.RequestContext{}, ledger.MovementInput{
		MaterialID: "m1",
		Type:       entity.MovementTypeIN,
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement — NotFound indistinguible
//
// Material inexistente, de otro tenant o borrado lógicamente deben fallar
// exactamente igual: mismo ErrNotFound, sin pista de cuál fue el caso.
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_MaterialInexistente_RetornaNotFound(t *testing.T) {
	uc, _ := buildEngine()

	_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: "no-existe",
		Type:       entity.MovementTypeIN,
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_MaterialDeOtroTenant_RetornaNotFound(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m-ajeno", otherTenantID, d("999"))

	_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: "m-ajeno",
		Type:       entity.MovementTypeIN,
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"material de otro tenant debe fallar igual que uno inexistente")
	assert.True(t, store.materials["m-ajeno"].CurrentStock.Equal(d("999")),
		"el material del otro tenant no debe mutarse")
}

func TestApplyMovement_MaterialBorrado_RetornaNotFound(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("10"))
	now := time.Now()
	store.materials["m1"].DeletedAt = &now

	_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
		MaterialID: "m1",
		Type:       entity.MovementTypeIN,
		Quantity:   d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"material borrado debe fallar igual que uno inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement — concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Movimientos concurrentes sobre el mismo material deben quedar totalmente
// ordenados: el resultado final es el mismo que el de cualquier orden serial.
func TestApplyMovement_ConcurrenciaSobreMismoMaterial(t *testing.T) {
	uc, store := buildEngine()
	seedMaterial(store, "m1", testTenantID, d("1000"))

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
				MaterialID: "m1",
				Type:       entity.MovementTypeIN,
				Quantity:   d("5"),
			})
			assert.NoError(t, err)
			_, err = uc.ApplyMovement(context.Background(), rcAdmin(), ledger.MovementInput{
				MaterialID: "m1",
				Type:       entity.MovementTypeOUT,
				Quantity:   d("3"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 1000 + 10*(5-3) = 1020
	assert.True(t, store.materials["m1"].CurrentStock.Equal(d("1020")),
		"el stock final debe ser el resultado serial: 1000 + 10*(5-3)")
	assert.Len(t, store.txs, workers*2)

	// El ledger completo sigue reconstruyendo el stock
	total := d("1000")
	for _, tx := range store.txs {
		total = total.Add(tx.SignedQuantity())
	}
	assert.True(t, total.Equal(d("1020")))
}

package prebatch_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Prebatch-api/internal/application/auth"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testPlan     = "PLAN-1"
	testOperator = "op1"
	testPassword = "clave-segura"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(d int) *time.Time {
	t := time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func lot(id, reCode, remain string, exp *time.Time) *entity.InventoryLot {
	return &entity.InventoryLot{
		IntakeLotID:     id,
		ReCode:          reCode,
		RemainingVolume: dec(remain),
		ExpireDate:      exp,
		Status:          entity.LotStatusActive,
	}
}

func req(batchID, reCode, perBatch, size string) *entity.IngredientRequirement {
	return &entity.IngredientRequirement{
		ID:             batchID + "-" + reCode,
		PlanID:         testPlan,
		BatchID:        batchID,
		ReCode:         reCode,
		IngredientName: reCode,
		PerBatchVolume: dec(perBatch),
		PackageSize:    dec(size),
	}
}

// failingRecords permite simular caídas del backend al guardar o borrar paquetes.
type failingRecords struct {
	*memory.RecordRepository
	failCreate bool
	failDelete bool
}

func (f *failingRecords) Create(ctx context.Context, rec *entity.PrebatchRecord) error {
	if f.failCreate {
		return errors.New("conexión perdida")
	}
	return f.RecordRepository.Create(ctx, rec)
}

func (f *failingRecords) Delete(ctx context.Context, id string) error {
	if f.failDelete {
		return errors.New("conexión perdida")
	}
	return f.RecordRepository.Delete(ctx, id)
}

// failingLots permite simular fallos al descontar o devolver inventario.
type failingLots struct {
	*memory.LotRepository
	failConsume    bool
	failRestoreFor string
}

func (f *failingLots) Restore(ctx context.Context, id string, volume decimal.Decimal) error {
	if f.failRestoreFor != "" && strings.EqualFold(f.failRestoreFor, id) {
		return errors.New("timeout")
	}
	return f.LotRepository.Restore(ctx, id, volume)
}

// failingRequirements falla al cambiar el estado de los ingredientes de failStatusFor.
type failingRequirements struct {
	*memory.RequirementRepository
	failStatusFor string
}

func (f *failingRequirements) SetStatus(ctx context.Context, batchID, reCode string, status entity.RequirementStatus) error {
	if f.failStatusFor != "" && f.failStatusFor == batchID {
		return errors.New("conexión perdida")
	}
	return f.RequirementRepository.SetStatus(ctx, batchID, reCode, status)
}

func (f *failingLots) Consume(ctx context.Context, id string, volume decimal.Decimal) error {
	if f.failConsume {
		return errors.New("timeout")
	}
	return f.LotRepository.Consume(ctx, id, volume)
}

type fixture struct {
	store   *memory.Store
	lots    *failingLots
	records *failingRecords
	reqs    *failingRequirements
	router  *prebatch.ScaleRouter
	session *prebatch.Session
}

// newFixture arma una sesión sobre un store en memoria con los lotes de producción
// B001..B00n del plan de prueba.
func newFixture(t *testing.T, batchIDs []string, reqs []*entity.IngredientRequirement, lots ...*entity.InventoryLot) *fixture {
	t.Helper()
	var batches []*entity.ProductionBatch
	for _, id := range batchIDs {
		batches = append(batches, &entity.ProductionBatch{BatchID: id, PlanID: testPlan})
	}
	store := &memory.Store{
		Lots:         memory.NewLotRepository(lots...),
		Requirements: memory.NewRequirementRepository(reqs...),
		Records:      memory.NewRecordRepository(),
		Batches:      memory.NewBatchRepository(batches...),
		Users:        memory.NewUserRepository(),
	}
	authUC := auth.NewAuthUseCase(store.Users, auth.JWTConfig{Secret: "k", ExpMinutes: 5, Issuer: "test"})
	_, err := authUC.RegisterUser(context.Background(), testOperator, testPassword, "", "")
	require.NoError(t, err)

	router := prebatch.NewScaleRouter(prebatch.DefaultScales(), prebatch.WithWatchdogWindow(time.Hour))
	t.Cleanup(router.Close)

	records := &failingRecords{RecordRepository: store.Records}
	lotRepo := &failingLots{LotRepository: store.Lots}
	reqRepo := &failingRequirements{RequirementRepository: store.Requirements}
	session := prebatch.NewSession(testOperator, prebatch.SessionDeps{
		Ledger:       prebatch.NewLotLedger(lotRepo),
		Scales:       router,
		Requirements: reqRepo,
		Records:      records,
		Batches:      store.Batches,
		Verifier:     authUC,
		Logger:       zerolog.Nop(),
	})
	return &fixture{store: store, lots: lotRepo, records: records, reqs: reqRepo, router: router, session: session}
}

// weigh publica una lectura estable en la balanza activa de la sesión.
func (f *fixture) weigh(t *testing.T, kg string) {
	t.Helper()
	scaleID := f.session.View().ScaleID
	require.NotEmpty(t, scaleID, "la sesión debe tener balanza asignada")
	require.NoError(t, f.router.OnReading(entity.ScaleReading{
		ScaleID: scaleID, Weight: dec(kg), Unit: "kg", Stable: true,
	}))
}

func (f *fixture) remaining(t *testing.T, lotID string) decimal.Decimal {
	t.Helper()
	l, err := f.store.Lots.GetByIntakeLotID(context.Background(), lotID)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l.RemainingVolume
}

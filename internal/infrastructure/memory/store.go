package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// Store agrupa los repositorios en memoria (STORE_DRIVER=memory y tests).
type Store struct {
	Lots         *LotRepository
	Requirements *RequirementRepository
	Records      *RecordRepository
	Batches      *BatchRepository
	Users        *UserRepository
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		Lots:         NewLotRepository(),
		Requirements: NewRequirementRepository(),
		Records:      NewRecordRepository(),
		Batches:      NewBatchRepository(),
		Users:        NewUserRepository(),
	}
}

// NewDemoStore crea un plan de demostración con dos lotes de producción y dos ingredientes.
func NewDemoStore(now time.Time) *Store {
	d := func(days int) *time.Time {
		t := now.AddDate(0, 0, days).Truncate(24 * time.Hour)
		return &t
	}
	kg := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	batches := []*entity.ProductionBatch{
		{BatchID: "PLAN-DEMO-B001", PlanID: "PLAN-DEMO", SKUID: "SKU-100", BatchSize: kg("500")},
		{BatchID: "PLAN-DEMO-B002", PlanID: "PLAN-DEMO", SKUID: "SKU-100", BatchSize: kg("500")},
	}
	var reqs []*entity.IngredientRequirement
	for _, b := range batches {
		reqs = append(reqs,
			&entity.IngredientRequirement{
				ID: b.BatchID + "-RE-SAL", PlanID: b.PlanID, BatchID: b.BatchID, ReCode: "RE-SAL",
				IngredientName: "Sal refinada", PerBatchVolume: kg("12.5"), TotalRequiredVolume: kg("25"),
				PackageSize: kg("5"), BatchCount: len(batches), WarehouseLocation: "MP-01",
			},
			&entity.IngredientRequirement{
				ID: b.BatchID + "-RE-AZU", PlanID: b.PlanID, BatchID: b.BatchID, ReCode: "RE-AZU",
				IngredientName: "Azúcar", PerBatchVolume: kg("40"), TotalRequiredVolume: kg("80"),
				PackageSize: kg("20"), BatchCount: len(batches), WarehouseLocation: "MP-02",
			},
		)
	}
	lots := []*entity.InventoryLot{
		{IntakeLotID: "IL-SAL-001", ReCode: "RE-SAL", LotNumber: "S-001", RemainingVolume: kg("8"), ExpireDate: d(10), Status: entity.LotStatusActive, WarehouseLocation: "MP-01"},
		{IntakeLotID: "IL-SAL-002", ReCode: "RE-SAL", LotNumber: "S-002", RemainingVolume: kg("50"), ExpireDate: d(40), Status: entity.LotStatusActive, WarehouseLocation: "MP-01"},
		{IntakeLotID: "IL-AZU-001", ReCode: "RE-AZU", LotNumber: "A-001", RemainingVolume: kg("100"), ExpireDate: d(20), Status: entity.LotStatusActive, WarehouseLocation: "MP-02"},
		{IntakeLotID: "IL-AZU-002", ReCode: "RE-AZU", LotNumber: "A-002", RemainingVolume: kg("60"), Status: entity.LotStatusActive, WarehouseLocation: "MP-02"},
	}
	return &Store{
		Lots:         NewLotRepository(lots...),
		Requirements: NewRequirementRepository(reqs...),
		Records:      NewRecordRepository(),
		Batches:      NewBatchRepository(batches...),
		Users:        NewUserRepository(),
	}
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelectBatchRequest body para POST /api/prebatch/session/batch.
type SelectBatchRequest struct {
	PlanID  string `json:"plan_id"`
	BatchID string `json:"batch_id"`
}

// SelectIngredientRequest body para POST /api/prebatch/session/ingredient.
type SelectIngredientRequest struct {
	ReCode string `json:"re_code"`
}

// ScanLotRequest body para POST /api/prebatch/session/scan.
type ScanLotRequest struct {
	IntakeLotID string `json:"intake_lot_id"`
}

// PackageSizeRequest body para PUT /api/prebatch/session/package-size.
type PackageSizeRequest struct {
	PackageSize decimal.Decimal `json:"package_size"`
}

// UnlockRequest body para POST /api/prebatch/session/unlock (contraseña del operador).
type UnlockRequest struct {
	Password string `json:"password"`
}

// LotStatusRequest body para PUT /api/prebatch/lots/:intake_lot_id/status (Active | Inactive).
type LotStatusRequest struct {
	Status string `json:"status"`
}

// CancelPackageRequest body para DELETE /api/prebatch/records/:id.
type CancelPackageRequest struct {
	Token string `json:"token"`
}

// LotResponse lote de inventario elegible.
type LotResponse struct {
	IntakeLotID       string          `json:"intake_lot_id"`
	ReCode            string          `json:"re_code"`
	LotNumber         string          `json:"lot_number,omitempty"`
	WarehouseLocation string          `json:"warehouse_location,omitempty"`
	RemainingVolume   decimal.Decimal `json:"remaining_volume"`
	ExpireDate        *time.Time      `json:"expire_date,omitempty"`
	Status            string          `json:"status"`
}

// OriginResponse origen de un paquete.
type OriginResponse struct {
	IntakeLotID string          `json:"intake_lot_id"`
	TakeVolume  decimal.Decimal `json:"take_volume"`
}

// PlannedPackageResponse paquete del plan del ingrediente.
type PlannedPackageResponse struct {
	PackageNo int              `json:"package_no"`
	Target    decimal.Decimal  `json:"target"`
	Actual    *decimal.Decimal `json:"actual,omitempty"`
	Done      bool             `json:"done"`
}

// RequirementResponse requerimiento de ingrediente dentro del lote de producción.
type RequirementResponse struct {
	ReCode            string          `json:"re_code"`
	IngredientName    string          `json:"ingredient_name"`
	RequiredVolume    decimal.Decimal `json:"required_volume"`
	PackagedVolume    decimal.Decimal `json:"packaged_volume"`
	PackageSize       decimal.Decimal `json:"package_size"`
	Status            string          `json:"status"`
	WarehouseLocation string          `json:"warehouse_location,omitempty"`
}

// IngredientSummaryResponse agregado de un ingrediente a nivel de plan.
type IngredientSummaryResponse struct {
	ReCode              string          `json:"re_code"`
	IngredientName      string          `json:"ingredient_name"`
	TotalRequiredVolume decimal.Decimal `json:"total_required_volume"`
	TotalPackagedVolume decimal.Decimal `json:"total_packaged_volume"`
	BatchCount          int             `json:"batch_count"`
	DoneBatches         int             `json:"done_batches"`
}

// RecordResponse paquete pesado.
type RecordResponse struct {
	ID            string           `json:"id"`
	BatchRecordID string           `json:"batch_record_id"`
	PlanID        string           `json:"plan_id"`
	BatchID       string           `json:"batch_id"`
	ReCode        string           `json:"re_code"`
	PackageNo     int              `json:"package_no"`
	TotalPackages int              `json:"total_packages"`
	NetVolume     decimal.Decimal  `json:"net_volume"`
	TotalVolume   decimal.Decimal  `json:"total_volume"`
	Origins       []OriginResponse `json:"origins"`
	ScaleID       string           `json:"scale_id,omitempty"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// SelectionResponse resultado de seleccionar un ingrediente.
type SelectionResponse struct {
	ReCode          string          `json:"re_code"`
	AutoSelectedLot *LotResponse    `json:"auto_selected_lot,omitempty"`
	NoInventory     bool            `json:"no_inventory"`
	ScaleID         string          `json:"scale_id"`
	Target          decimal.Decimal `json:"target"`
	TotalPackages   int             `json:"total_packages"`
	NextPackageNo   int             `json:"next_package_no"`
}

// CommitResponse resultado de confirmar un paquete.
type CommitResponse struct {
	Record             RecordResponse `json:"record"`
	InventoryWarnings  []string       `json:"inventory_warnings,omitempty"`
	IngredientDone     bool           `json:"ingredient_done"`
	BatchPrepared      bool           `json:"batch_prepared"`
	AdvancedToBatch    string         `json:"advanced_to_batch,omitempty"`
	AllBatchesComplete bool           `json:"all_batches_complete"`
	// CascadeError describe la falla al completar o avanzar; el paquete sí quedó registrado
	// y la sesión permanece en el lote de producción actual.
	CascadeError string `json:"cascade_error,omitempty"`
}

// CancelResponse resultado de cancelar un paquete.
type CancelResponse struct {
	Record            RecordResponse   `json:"record"`
	Restored          []OriginResponse `json:"restored"`
	InventoryWarnings []string         `json:"inventory_warnings,omitempty"`
}

// SessionResponse vista completa de la sesión de pesaje del operador.
type SessionResponse struct {
	Operator          string                   `json:"operator"`
	State             string                   `json:"state"`
	PlanID            string                   `json:"plan_id,omitempty"`
	BatchID           string                   `json:"batch_id,omitempty"`
	ReCode            string                   `json:"re_code,omitempty"`
	SelectedLotID     string                   `json:"selected_lot_id,omitempty"`
	PackageSize       decimal.Decimal          `json:"package_size"`
	PackageSizeLocked bool                     `json:"package_size_locked"`
	ScaleID           string                   `json:"scale_id,omitempty"`
	LiveWeight        decimal.Decimal          `json:"live_weight"`
	Target            decimal.Decimal          `json:"target"`
	Delta             decimal.Decimal          `json:"delta"`
	WithinTolerance   bool                     `json:"within_tolerance"`
	ScaleStale        bool                     `json:"scale_stale"`
	NextPackageNo     int                      `json:"next_package_no"`
	TotalPackages     int                      `json:"total_packages"`
	Origins           []OriginResponse         `json:"origins"`
	Plan              []PlannedPackageResponse `json:"plan"`
	Requirements      []RequirementResponse    `json:"requirements"`
	Records           []RecordResponse         `json:"records"`
}

// PlanPreviewResponse salida de GET /api/prebatch/plan.
type PlanPreviewResponse struct {
	TotalPackages int                      `json:"total_packages"`
	NextPackageNo int                      `json:"next_package_no"`
	Target        decimal.Decimal          `json:"target"`
	Packages      []PlannedPackageResponse `json:"packages"`
}

// BatchResponse lote de producción de un plan.
type BatchResponse struct {
	BatchID   string          `json:"batch_id"`
	PlanID    string          `json:"plan_id"`
	SKUID     string          `json:"sku_id,omitempty"`
	BatchSize decimal.Decimal `json:"batch_size"`
	Prepared  bool            `json:"prepared"`
	Status    string          `json:"status,omitempty"`
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo ledger de lotes sobre ingredient_intake_lists (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `intake_lot_id, re_code, mat_sap_code, lot_number, warehouse_location,
		remain_vol, expire_date, status, edit_at`

func scanLot(row pgx.Row) (*entity.InventoryLot, error) {
	var l entity.InventoryLot
	err := row.Scan(
		&l.IntakeLotID, &l.ReCode, &l.MatSapCode, &l.LotNumber, &l.WarehouseLocation,
		&l.RemainingVolume, &l.ExpireDate, &l.Status, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByReCode devuelve todos los lotes del ingrediente, activos e inactivos.
func (r *LotRepo) ListByReCode(ctx context.Context, reCode string) ([]*entity.InventoryLot, error) {
	query := `SELECT ` + lotColumns + `
		FROM ingredient_intake_lists
		WHERE lower(re_code) = lower($1)
		ORDER BY expire_date ASC NULLS LAST, intake_lot_id`
	rows, err := r.q.Query(ctx, query, reCode)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetByIntakeLotID devuelve (nil, nil) si el lote no existe.
func (r *LotRepo) GetByIntakeLotID(ctx context.Context, intakeLotID string) (*entity.InventoryLot, error) {
	query := `SELECT ` + lotColumns + `
		FROM ingredient_intake_lists WHERE lower(intake_lot_id) = lower($1)`
	l, err := scanLot(r.q.QueryRow(ctx, query, intakeLotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// Consume descuenta en un solo UPDATE condicionado; nunca deja remain_vol negativo.
func (r *LotRepo) Consume(ctx context.Context, intakeLotID string, volume decimal.Decimal) error {
	query := `
		UPDATE ingredient_intake_lists
		SET remain_vol = remain_vol - $2, edit_at = now()
		WHERE lower(intake_lot_id) = lower($1) AND remain_vol >= $2`
	tag, err := r.q.Exec(ctx, query, intakeLotID, volume)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: lote %s", domain.ErrInsufficientStock, intakeLotID)
		}
		return fmt.Errorf("consume lot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	l, err := r.GetByIntakeLotID(ctx, intakeLotID)
	if err != nil {
		return err
	}
	if l == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	return fmt.Errorf("%w: lote %s", domain.ErrInsufficientStock, intakeLotID)
}

// Restore devuelve volumen al lote.
func (r *LotRepo) Restore(ctx context.Context, intakeLotID string, volume decimal.Decimal) error {
	query := `
		UPDATE ingredient_intake_lists
		SET remain_vol = remain_vol + $2, edit_at = now()
		WHERE lower(intake_lot_id) = lower($1)`
	tag, err := r.q.Exec(ctx, query, intakeLotID, volume)
	if err != nil {
		return fmt.Errorf("restore lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	return nil
}

// SetStatus activa o inactiva el lote.
func (r *LotRepo) SetStatus(ctx context.Context, intakeLotID, status string) error {
	query := `
		UPDATE ingredient_intake_lists
		SET status = $2, edit_at = now()
		WHERE lower(intake_lot_id) = lower($1)`
	tag, err := r.q.Exec(ctx, query, intakeLotID, status)
	if err != nil {
		return fmt.Errorf("set lot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLot, intakeLotID)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo paquetes pesados sobre prebatch_recs y prebatch_rec_from.
type RecordRepo struct {
	q  Querier
	tx *TxRunner
}

// NewRecordRepository construye el adaptador. Create y Delete usan una transacción propia.
func NewRecordRepository(q Querier, tx *TxRunner) *RecordRepo {
	return &RecordRepo{q: q, tx: tx}
}

const recordColumns = `id, batch_record_id, plan_id, batch_id, re_code, package_no, total_packages,
		net_volume, total_volume, COALESCE(intake_lot_id, ''), scale_id, created_by, created_at`

func scanRecord(row pgx.Row) (*entity.PrebatchRecord, error) {
	var rec entity.PrebatchRecord
	err := row.Scan(
		&rec.ID, &rec.BatchRecordID, &rec.PlanID, &rec.BatchID, &rec.ReCode, &rec.PackageNo, &rec.TotalPackages,
		&rec.NetVolume, &rec.TotalVolume, &rec.IntakeLotID, &rec.ScaleID, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserta el paquete y sus orígenes en la misma transacción.
func (r *RecordRepo) Create(ctx context.Context, rec *entity.PrebatchRecord) error {
	return r.tx.Run(ctx, func(q Querier) error {
		query := `
			INSERT INTO prebatch_recs (` + recordColumnsInsert + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)`
		_, err := q.Exec(ctx, query,
			rec.ID, rec.BatchRecordID, rec.PlanID, rec.BatchID, rec.ReCode, rec.PackageNo, rec.TotalPackages,
			rec.NetVolume, rec.TotalVolume, rec.IntakeLotID, rec.ScaleID, rec.CreatedBy, rec.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: paquete %s", domain.ErrDuplicate, rec.BatchRecordID)
			}
			return fmt.Errorf("insert prebatch record: %w", err)
		}
		for i, o := range rec.Origins {
			_, err := q.Exec(ctx, `
				INSERT INTO prebatch_rec_from (record_id, seq, intake_lot_id, take_volume)
				VALUES ($1, $2, $3, $4)`,
				rec.ID, i+1, o.IntakeLotID, o.TakeVolume,
			)
			if err != nil {
				return fmt.Errorf("insert origin %d: %w", i+1, err)
			}
		}
		return nil
	})
}

const recordColumnsInsert = `id, batch_record_id, plan_id, batch_id, re_code, package_no, total_packages,
				net_volume, total_volume, intake_lot_id, scale_id, created_by, created_at`

// GetByID busca por id o por batch_record_id; (nil, nil) si no existe.
func (r *RecordRepo) GetByID(ctx context.Context, id string) (*entity.PrebatchRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM prebatch_recs WHERE id::text = $1 OR lower(batch_record_id) = lower($1) LIMIT 1`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prebatch record: %w", err)
	}
	if err := r.loadOrigins(ctx, []*entity.PrebatchRecord{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.PrebatchRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM prebatch_recs WHERE batch_id = $1 ORDER BY re_code, package_no`
	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list prebatch records: %w", err)
	}
	var list []*entity.PrebatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan prebatch record: %w", err)
		}
		list = append(list, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadOrigins(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RecordRepo) loadOrigins(ctx context.Context, recs []*entity.PrebatchRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, len(recs))
	byID := make(map[string]*entity.PrebatchRecord, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
		byID[rec.ID] = rec
	}
	rows, err := r.q.Query(ctx, `
		SELECT record_id::text, intake_lot_id, take_volume
		FROM prebatch_rec_from WHERE record_id::text = ANY($1) ORDER BY record_id, seq`, ids)
	if err != nil {
		return fmt.Errorf("list origins: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recordID string
		var o entity.PackageOrigin
		if err := rows.Scan(&recordID, &o.IntakeLotID, &o.TakeVolume); err != nil {
			return fmt.Errorf("scan origin: %w", err)
		}
		if rec, ok := byID[recordID]; ok {
			rec.Origins = append(rec.Origins, o)
		}
	}
	return rows.Err()
}

// Delete borra el paquete; los orígenes caen por ON DELETE CASCADE.
func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	return r.tx.Run(ctx, func(q Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM prebatch_recs WHERE id::text = $1`, id)
		if err != nil {
			return fmt.Errorf("delete prebatch record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: paquete %s", domain.ErrNotFound, id)
		}
		return nil
	})
}

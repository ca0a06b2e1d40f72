package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes de producción sobre production_batches.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func (r *BatchRepo) ListByPlan(ctx context.Context, planID string) ([]*entity.ProductionBatch, error) {
	query := `
		SELECT batch_id, plan_id, sku_id, batch_size, batch_prepare, status
		FROM production_batches WHERE plan_id = $1 ORDER BY batch_id`
	rows, err := r.q.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionBatch
	for rows.Next() {
		var b entity.ProductionBatch
		if err := rows.Scan(&b.BatchID, &b.PlanID, &b.SKUID, &b.BatchSize, &b.Prepared, &b.Status); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

func (r *BatchRepo) MarkPrepared(ctx context.Context, batchID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE production_batches SET batch_prepare = true WHERE batch_id = $1`, batchID)
	if err != nil {
		return fmt.Errorf("mark batch prepared: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote de producción %s", domain.ErrNotFound, batchID)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
)

var _ repository.RequirementRepository = (*RequirementRepo)(nil)

// RequirementRepo requerimientos por lote sobre prod_batch_reqs.
// El volumen empacado se calcula desde prebatch_recs.
type RequirementRepo struct {
	q Querier
}

// NewRequirementRepository construye el adaptador.
func NewRequirementRepository(q Querier) *RequirementRepo {
	return &RequirementRepo{q: q}
}

func (r *RequirementRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.IngredientRequirement, error) {
	query := `
		SELECT r.id, r.plan_id, r.batch_id, r.re_code, r.ingredient_name, r.mat_sap_code,
		       r.required_volume, r.total_required_volume, COALESCE(p.packaged, 0),
		       r.package_size, r.batch_count, r.warehouse_location, r.status
		FROM prod_batch_reqs r
		LEFT JOIN (
			SELECT batch_id, re_code, SUM(net_volume) AS packaged
			FROM prebatch_recs GROUP BY batch_id, re_code
		) p ON p.batch_id = r.batch_id AND p.re_code = r.re_code
		WHERE r.batch_id = $1
		ORDER BY r.re_code`
	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()
	var list []*entity.IngredientRequirement
	for rows.Next() {
		var q entity.IngredientRequirement
		if err := rows.Scan(
			&q.ID, &q.PlanID, &q.BatchID, &q.ReCode, &q.IngredientName, &q.MatSapCode,
			&q.PerBatchVolume, &q.TotalRequiredVolume, &q.TotalPackagedVolume,
			&q.PackageSize, &q.BatchCount, &q.WarehouseLocation, &q.Status,
		); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		list = append(list, &q)
	}
	return list, rows.Err()
}

func (r *RequirementRepo) SummaryByPlan(ctx context.Context, planID string) ([]*entity.IngredientSummary, error) {
	query := `
		SELECT r.re_code, MAX(r.ingredient_name), SUM(r.required_volume), COALESCE(SUM(p.packaged), 0),
		       COUNT(*), COUNT(*) FILTER (WHERE r.status = 2)
		FROM prod_batch_reqs r
		LEFT JOIN (
			SELECT batch_id, re_code, SUM(net_volume) AS packaged
			FROM prebatch_recs GROUP BY batch_id, re_code
		) p ON p.batch_id = r.batch_id AND p.re_code = r.re_code
		WHERE r.plan_id = $1
		GROUP BY r.re_code
		ORDER BY r.re_code`
	rows, err := r.q.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("summary by plan: %w", err)
	}
	defer rows.Close()
	var list []*entity.IngredientSummary
	for rows.Next() {
		s := entity.IngredientSummary{PlanID: planID}
		if err := rows.Scan(
			&s.ReCode, &s.IngredientName, &s.TotalRequiredVolume, &s.TotalPackagedVolume,
			&s.BatchCount, &s.DoneBatches,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *RequirementRepo) SetStatus(ctx context.Context, batchID, reCode string, status entity.RequirementStatus) error {
	query := `UPDATE prod_batch_reqs SET status = $3 WHERE batch_id = $1 AND lower(re_code) = lower($2)`
	tag, err := r.q.Exec(ctx, query, batchID, reCode, int(status))
	if err != nil {
		return fmt.Errorf("set requirement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: requerimiento %s/%s", domain.ErrNotFound, batchID, reCode)
	}
	return nil
}

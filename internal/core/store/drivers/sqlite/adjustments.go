package sqlite

import (
	"context"
	"database/sql"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type adjustmentsRepo struct {
	q querier
}

func (r *adjustmentsRepo) CreateAdjustment(ctx context.Context, a domain.Adjustment) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO adjustments (id, product_id, warehouse_id, bin_id, quantity_change, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.ProductID.String(), a.WarehouseID.String(),
		mapOptionalID(a.BinID), a.QuantityChange, a.Reason, a.CreatedAt)
	return err
}

func (r *adjustmentsRepo) ListAdjustments(ctx context.Context) ([]domain.Adjustment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, product_id, warehouse_id, bin_id, quantity_change, reason, created_at
		FROM adjustments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []domain.Adjustment
	for rows.Next() {
		var (
			a           domain.Adjustment
			id          string
			productID   string
			warehouseID string
			binID       sql.NullString
		)
		if err := rows.Scan(&id, &productID, &warehouseID, &binID,
			&a.QuantityChange, &a.Reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ID = idx.ID(id)
		a.ProductID = idx.ID(productID)
		a.WarehouseID = idx.ID(warehouseID)
		a.BinID = mapNullIDPtr(binID)
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

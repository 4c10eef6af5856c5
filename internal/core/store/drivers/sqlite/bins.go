package sqlite

import (
	"context"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type binsRepo struct {
	q querier
}

const binColumns = `id, warehouse_id, code, name, created_at`

func scanBin(row interface{ Scan(...any) error }) (domain.Bin, error) {
	var (
		b           domain.Bin
		id          string
		warehouseID string
	)
	err := row.Scan(&id, &warehouseID, &b.Code, &b.Name, &b.CreatedAt)
	if err != nil {
		return domain.Bin{}, err
	}
	b.ID = idx.ID(id)
	b.WarehouseID = idx.ID(warehouseID)
	return b, nil
}

func (r *binsRepo) CreateBin(ctx context.Context, b domain.Bin) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO bins (id, warehouse_id, code, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID.String(), b.WarehouseID.String(), b.Code, b.Name, b.CreatedAt)
	return mapConstraint(err)
}

func (r *binsRepo) GetBinByID(ctx context.Context, id idx.ID) (domain.Bin, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+binColumns+` FROM bins WHERE id = ?`, id.String())
	b, err := scanBin(row)
	return b, mapNotFound(err)
}

func (r *binsRepo) ListBins(ctx context.Context, warehouseID idx.ID) ([]domain.Bin, error) {
	query := `SELECT ` + binColumns + ` FROM bins`
	var args []any
	if !warehouseID.IsZero() {
		query += ` WHERE warehouse_id = ?`
		args = append(args, warehouseID.String())
	}
	query += ` ORDER BY id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bins []domain.Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

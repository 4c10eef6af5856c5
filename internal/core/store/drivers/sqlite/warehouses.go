package sqlite

import (
	"context"
	"database/sql"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type warehousesRepo struct {
	q querier
}

const warehouseColumns = `id, code, name, location, created_at`

func scanWarehouse(row interface{ Scan(...any) error }) (domain.Warehouse, error) {
	var (
		w        domain.Warehouse
		id       string
		location sql.NullString
	)
	err := row.Scan(&id, &w.Code, &w.Name, &location, &w.CreatedAt)
	if err != nil {
		return domain.Warehouse{}, err
	}
	w.ID = idx.ID(id)
	w.Location = mapNullStringPtr(location)
	return w, nil
}

func (r *warehousesRepo) CreateWarehouse(ctx context.Context, w domain.Warehouse) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO warehouses (id, code, name, location, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		w.ID.String(), w.Code, w.Name, mapOptionalString(w.Location), w.CreatedAt)
	return mapConstraint(err)
}

func (r *warehousesRepo) GetWarehouseByID(ctx context.Context, id idx.ID) (domain.Warehouse, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE id = ?`, id.String())
	w, err := scanWarehouse(row)
	return w, mapNotFound(err)
}

func (r *warehousesRepo) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []domain.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

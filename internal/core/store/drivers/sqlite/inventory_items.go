package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type inventoryItemsRepo struct {
	q querier
}

const itemColumns = `id, product_id, warehouse_id, bin_id, quantity, last_updated`

func scanItem(row interface{ Scan(...any) error }) (domain.InventoryItem, error) {
	var (
		it          domain.InventoryItem
		id          string
		productID   string
		warehouseID string
		binID       sql.NullString
	)
	err := row.Scan(&id, &productID, &warehouseID, &binID, &it.Quantity, &it.LastUpdated)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	it.ID = idx.ID(id)
	it.ProductID = idx.ID(productID)
	it.WarehouseID = idx.ID(warehouseID)
	it.BinID = mapNullIDPtr(binID)
	return it, nil
}

// GetItemAt matches on the exact location triple, treating a nil bin as the
// warehouse-level row. bin_id IS ? handles the NULL comparison.
func (r *inventoryItemsRepo) GetItemAt(ctx context.Context, productID, warehouseID idx.ID, binID *idx.ID) (domain.InventoryItem, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE product_id = ? AND warehouse_id = ? AND bin_id IS ?`,
		productID.String(), warehouseID.String(), mapOptionalID(binID))
	it, err := scanItem(row)
	return it, mapNotFound(err)
}

func (r *inventoryItemsRepo) CreateItem(ctx context.Context, it domain.InventoryItem) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO inventory_items (id, product_id, warehouse_id, bin_id, quantity, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.ID.String(), it.ProductID.String(), it.WarehouseID.String(),
		mapOptionalID(it.BinID), it.Quantity, it.LastUpdated)
	return err
}

func (r *inventoryItemsRepo) UpdateItemQuantity(ctx context.Context, id idx.ID, quantity float64, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE inventory_items SET quantity = ?, last_updated = ? WHERE id = ?`,
		quantity, updatedAt, id.String())
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *inventoryItemsRepo) ListItems(ctx context.Context, productID, warehouseID idx.ID) ([]domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	var (
		conds []string
		args  []any
	)
	if !productID.IsZero() {
		conds = append(conds, "product_id = ?")
		args = append(args, productID.String())
	}
	if !warehouseID.IsZero() {
		conds = append(conds, "warehouse_id = ?")
		args = append(args, warehouseID.String())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type stockMovesRepo struct {
	q querier
}

const moveColumns = `id, product_id, move_type, from_warehouse_id, from_bin_id, to_warehouse_id, to_bin_id, quantity, reference, notes, created_at`

func scanMove(row interface{ Scan(...any) error }) (domain.StockMove, error) {
	var (
		m         domain.StockMove
		id        string
		productID string
		moveType  string
		fromWH    sql.NullString
		fromBin   sql.NullString
		toWH      sql.NullString
		toBin     sql.NullString
		reference sql.NullString
		notes     sql.NullString
	)
	err := row.Scan(&id, &productID, &moveType, &fromWH, &fromBin, &toWH, &toBin,
		&m.Quantity, &reference, &notes, &m.CreatedAt)
	if err != nil {
		return domain.StockMove{}, err
	}
	m.ID = idx.ID(id)
	m.ProductID = idx.ID(productID)
	m.MoveType = domain.MoveType(moveType)
	m.FromWarehouseID = mapNullIDPtr(fromWH)
	m.FromBinID = mapNullIDPtr(fromBin)
	m.ToWarehouseID = mapNullIDPtr(toWH)
	m.ToBinID = mapNullIDPtr(toBin)
	m.Reference = mapNullStringPtr(reference)
	m.Notes = mapNullStringPtr(notes)
	return m, nil
}

func (r *stockMovesRepo) CreateStockMove(ctx context.Context, m domain.StockMove) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO stock_moves (id, product_id, move_type, from_warehouse_id, from_bin_id, to_warehouse_id, to_bin_id, quantity, reference, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.ProductID.String(), string(m.MoveType),
		mapOptionalID(m.FromWarehouseID), mapOptionalID(m.FromBinID),
		mapOptionalID(m.ToWarehouseID), mapOptionalID(m.ToBinID),
		m.Quantity, mapOptionalString(m.Reference), mapOptionalString(m.Notes), m.CreatedAt)
	return err
}

func (r *stockMovesRepo) ListStockMoves(ctx context.Context, productID idx.ID) ([]domain.StockMove, error) {
	query := `SELECT ` + moveColumns + ` FROM stock_moves`
	var args []any
	if !productID.IsZero() {
		query += ` WHERE product_id = ?`
		args = append(args, productID.String())
	}
	query += ` ORDER BY id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moves []domain.StockMove
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

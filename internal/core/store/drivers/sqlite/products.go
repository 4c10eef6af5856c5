package sqlite

import (
	"context"
	"database/sql"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type productsRepo struct {
	q querier
}

const productColumns = `id, code, name, description, unit, created_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var (
		p           domain.Product
		id          string
		description sql.NullString
	)
	err := row.Scan(&id, &p.Code, &p.Name, &description, &p.Unit, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = idx.ID(id)
	p.Description = mapNullStringPtr(description)
	return p, nil
}

func (r *productsRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, code, name, description, unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.Code, p.Name, mapOptionalString(p.Description), p.Unit, p.CreatedAt)
	return mapConstraint(err)
}

func (r *productsRepo) GetProductByID(ctx context.Context, id idx.ID) (domain.Product, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id.String())
	p, err := scanProduct(row)
	return p, mapNotFound(err)
}

func (r *productsRepo) GetProductByCode(ctx context.Context, code string) (domain.Product, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = ?`, code)
	p, err := scanProduct(row)
	return p, mapNotFound(err)
}

func (r *productsRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, name, password_hash, phone, picture_url, role, otp_enabled, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u            domain.User
		id           string
		passwordHash sql.NullString
		phone        sql.NullString
		pictureURL   sql.NullString
		role         string
	)
	err := row.Scan(&id, &u.Email, &u.Name, &passwordHash, &phone, &pictureURL,
		&role, &u.OTPEnabled, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = idx.ID(id)
	u.PasswordHash = mapNullStringPtr(passwordHash)
	u.Phone = mapNullStringPtr(phone)
	u.PictureURL = mapNullStringPtr(pictureURL)
	u.Role = domain.Role(role)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id idx.ID) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	// email column is COLLATE NOCASE, so this match is case-insensitive.
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	return u, mapNotFound(err)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, phone, picture_url, role, otp_enabled, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.Name,
		mapOptionalString(u.PasswordHash), mapOptionalString(u.Phone), mapOptionalString(u.PictureURL),
		u.Role.String(), u.OTPEnabled, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID idx.ID, role domain.Role) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role.String(), time.Now().UTC(), userID.String())
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID idx.ID, newHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID.String())
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *usersRepo) SetActive(ctx context.Context, userID idx.ID, active bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), userID.String())
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func requireRowChanged(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

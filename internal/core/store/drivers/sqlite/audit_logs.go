package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type auditLogsRepo struct {
	q querier
}

func (r *auditLogsRepo) AppendEntry(ctx context.Context, e domain.AuditLogEntry) error {
	var before, after sql.NullString
	if len(e.Before) > 0 {
		before = sql.NullString{String: string(e.Before), Valid: true}
	}
	if len(e.After) > 0 {
		after = sql.NullString{String: string(e.After), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, user_email, action, resource_type, resource_id, before_data, after_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID.String(), e.UserEmail, string(e.Action),
		e.ResourceType, e.ResourceID, before, after, e.CreatedAt)
	return err
}

// ListEntries returns entries newest first. ULIDs sort lexicographically by
// creation time, so ordering by id descending is ordering by time.
func (r *auditLogsRepo) ListEntries(ctx context.Context, f store.AuditFilter) ([]domain.AuditLogEntry, error) {
	var (
		conds []string
		args  []any
	)
	if !f.UserID.IsZero() {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID.String())
	}
	if f.ResourceType != "" {
		conds = append(conds, "resource_type = ?")
		args = append(args, f.ResourceType)
	}
	if f.ResourceID != "" {
		conds = append(conds, "resource_id = ?")
		args = append(args, f.ResourceID)
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, string(f.Action))
	}

	query := `SELECT id, user_id, user_email, action, resource_type, resource_id, before_data, after_data, created_at
		FROM audit_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry
	for rows.Next() {
		var (
			e      domain.AuditLogEntry
			id     string
			userID string
			action string
			before sql.NullString
			after  sql.NullString
		)
		if err := rows.Scan(&id, &userID, &e.UserEmail, &action,
			&e.ResourceType, &e.ResourceID, &before, &after, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID = idx.ID(id)
		e.UserID = idx.ID(userID)
		e.Action = domain.AuditAction(action)
		if before.Valid {
			e.Before = json.RawMessage(before.String)
		}
		if after.Valid {
			e.After = json.RawMessage(after.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

var ErrAuditWriteFailed = errors.New("audit_write_failed")

// AuditService writes the append-only trail. Record is always called inside
// the transaction of the mutation it describes: if the entry cannot be
// written the whole mutation rolls back.
type AuditService struct {
	Store store.Store
}

// Record appends one entry in the caller's transaction. before/after are
// snapshots of the resource; nil before for creates, nil after for deletes.
func (s *AuditService) Record(ctx context.Context, tx store.Tx, actor domain.User, action domain.AuditAction, resourceType string, resourceID string, before, after any) error {
	entry := domain.AuditLogEntry{
		ID:           idx.New(),
		UserID:       actor.ID,
		UserEmail:    actor.Email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		CreatedAt:    time.Now().UTC(),
	}

	var err error
	if entry.Before, err = marshalSnapshot(before); err != nil {
		return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}
	if entry.After, err = marshalSnapshot(after); err != nil {
		return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}

	if err := tx.AuditLogs().AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}
	return nil
}

// Query lists entries newest first.
func (s *AuditService) Query(ctx context.Context, f store.AuditFilter) ([]domain.AuditLogEntry, error) {
	return s.Store.AuditLogs().ListEntries(ctx, f)
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditLogEntry is an append-only record of a mutation. Entries are written
// in the same transaction as the change they describe and are never updated
// or deleted afterwards.
type AuditLogEntry struct {
	ID           idx.ID
	UserID       idx.ID
	UserEmail    string // denormalised so entries survive user changes
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Before       json.RawMessage // nil for creates
	After        json.RawMessage // nil for deletes
	CreatedAt    time.Time
}

package domain

import (
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

type Product struct {
	ID          idx.ID
	Code        string // unique
	Name        string
	Description *string
	Unit        string
	CreatedAt   time.Time
}

type Warehouse struct {
	ID        idx.ID
	Code      string // unique
	Name      string
	Location  *string
	CreatedAt time.Time
}

type Bin struct {
	ID          idx.ID
	WarehouseID idx.ID
	Code        string
	Name        string
	CreatedAt   time.Time
}

// InventoryItem tracks the on-hand quantity of a product at a warehouse
// location. One row per (product, warehouse, bin) triple.
type InventoryItem struct {
	ID          idx.ID
	ProductID   idx.ID
	WarehouseID idx.ID
	BinID       *idx.ID
	Quantity    float64
	LastUpdated time.Time
}

type MoveType string

const (
	MoveReceipt    MoveType = "receipt"
	MoveIssue      MoveType = "issue"
	MoveTransfer   MoveType = "transfer"
	MoveAdjustment MoveType = "adjustment"
)

func (m MoveType) Valid() bool {
	switch m {
	case MoveReceipt, MoveIssue, MoveTransfer, MoveAdjustment:
		return true
	}
	return false
}

type StockMove struct {
	ID              idx.ID
	ProductID       idx.ID
	MoveType        MoveType
	FromWarehouseID *idx.ID
	FromBinID       *idx.ID
	ToWarehouseID   *idx.ID
	ToBinID         *idx.ID
	Quantity        float64
	Reference       *string
	Notes           *string
	CreatedAt       time.Time
}

// Adjustment corrects the quantity at a location by a signed delta.
// Applying one also emits an adjustment-typed stock move for tracking.
type Adjustment struct {
	ID             idx.ID
	ProductID      idx.ID
	WarehouseID    idx.ID
	BinID          *idx.ID
	QuantityChange float64
	Reason         string
	CreatedAt      time.Time
}

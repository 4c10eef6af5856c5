package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

var (
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrInvalidMoveType = errors.New("invalid_move_type")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)

// InventoryService owns the audited inventory resources. Every create runs
// in one transaction together with its audit entry and any quantity change.
type InventoryService struct {
	Store store.Store
	Audit *AuditService
}

func (s *InventoryService) CreateProduct(ctx context.Context, actor domain.User, p domain.Product) (domain.Product, error) {
	p.ID = idx.New()
	p.CreatedAt = time.Now().UTC()
	if p.Unit == "" {
		p.Unit = "pcs"
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Products().CreateProduct(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateCode
			}
			return err
		}
		return s.Audit.Record(ctx, tx, actor, domain.AuditCreate, "product", p.ID.String(), nil, p)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id idx.ID) (domain.Product, error) {
	return s.Store.Products().GetProductByID(ctx, id)
}

func (s *InventoryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products().ListProducts(ctx)
}

func (s *InventoryService) CreateWarehouse(ctx context.Context, actor domain.User, w domain.Warehouse) (domain.Warehouse, error) {
	w.ID = idx.New()
	w.CreatedAt = time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Warehouses().CreateWarehouse(ctx, w); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateCode
			}
			return err
		}
		return s.Audit.Record(ctx, tx, actor, domain.AuditCreate, "warehouse", w.ID.String(), nil, w)
	})
	if err != nil {
		return domain.Warehouse{}, err
	}
	return w, nil
}

func (s *InventoryService) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	return s.Store.Warehouses().ListWarehouses(ctx)
}

func (s *InventoryService) CreateBin(ctx context.Context, actor domain.User, b domain.Bin) (domain.Bin, error) {
	b.ID = idx.New()
	b.CreatedAt = time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Warehouse must exist.
		if _, err := tx.Warehouses().GetWarehouseByID(ctx, b.WarehouseID); err != nil {
			return err
		}
		if err := tx.Bins().CreateBin(ctx, b); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, actor, domain.AuditCreate, "bin", b.ID.String(), nil, b)
	})
	if err != nil {
		return domain.Bin{}, err
	}
	return b, nil
}

func (s *InventoryService) ListBins(ctx context.Context, warehouseID idx.ID) ([]domain.Bin, error) {
	return s.Store.Bins().ListBins(ctx, warehouseID)
}

func (s *InventoryService) ListItems(ctx context.Context, productID, warehouseID idx.ID) ([]domain.InventoryItem, error) {
	return s.Store.InventoryItems().ListItems(ctx, productID, warehouseID)
}

// CreateStockMove records the move and applies its quantity effects:
// receipts add to the destination, issues subtract from the source, and
// transfers do both. All of it commits with one audit entry or not at all.
func (s *InventoryService) CreateStockMove(ctx context.Context, actor domain.User, m domain.StockMove) (domain.StockMove, error) {
	if !m.MoveType.Valid() || m.MoveType == domain.MoveAdjustment {
		// Adjustment moves are only emitted by CreateAdjustment.
		return domain.StockMove{}, ErrInvalidMoveType
	}
	if m.Quantity <= 0 {
		return domain.StockMove{}, ErrInvalidQuantity
	}

	m.ID = idx.New()
	m.CreatedAt = time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Products().GetProductByID(ctx, m.ProductID); err != nil {
			return err
		}

		if err := tx.StockMoves().CreateStockMove(ctx, m); err != nil {
			return err
		}

		switch m.MoveType {
		case domain.MoveReceipt:
			if err := s.applyDelta(ctx, tx, m.ProductID, m.ToWarehouseID, m.ToBinID, m.Quantity); err != nil {
				return err
			}
		case domain.MoveIssue:
			if err := s.applyDelta(ctx, tx, m.ProductID, m.FromWarehouseID, m.FromBinID, -m.Quantity); err != nil {
				return err
			}
		case domain.MoveTransfer:
			if err := s.applyDelta(ctx, tx, m.ProductID, m.FromWarehouseID, m.FromBinID, -m.Quantity); err != nil {
				return err
			}
			if err := s.applyDelta(ctx, tx, m.ProductID, m.ToWarehouseID, m.ToBinID, m.Quantity); err != nil {
				return err
			}
		}

		return s.Audit.Record(ctx, tx, actor, domain.AuditCreate, "stock_move", m.ID.String(), nil, m)
	})
	if err != nil {
		return domain.StockMove{}, err
	}
	return m, nil
}

func (s *InventoryService) ListStockMoves(ctx context.Context, productID idx.ID) ([]domain.StockMove, error) {
	return s.Store.StockMoves().ListStockMoves(ctx, productID)
}

// CreateAdjustment corrects a location's quantity and emits a tracking move
// referencing the adjustment. One audit entry covers the adjustment; the
// tracking move is derived data.
func (s *InventoryService) CreateAdjustment(ctx context.Context, actor domain.User, a domain.Adjustment) (domain.Adjustment, error) {
	if a.QuantityChange == 0 {
		return domain.Adjustment{}, ErrInvalidQuantity
	}

	a.ID = idx.New()
	a.CreatedAt = time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Products().GetProductByID(ctx, a.ProductID); err != nil {
			return err
		}
		if _, err := tx.Warehouses().GetWarehouseByID(ctx, a.WarehouseID); err != nil {
			return err
		}

		if err := tx.Adjustments().CreateAdjustment(ctx, a); err != nil {
			return err
		}
		if err := s.applyDelta(ctx, tx, a.ProductID, &a.WarehouseID, a.BinID, a.QuantityChange); err != nil {
			return err
		}

		move := trackingMove(a)
		if err := tx.StockMoves().CreateStockMove(ctx, move); err != nil {
			return err
		}

		return s.Audit.Record(ctx, tx, actor, domain.AuditCreate, "adjustment", a.ID.String(), nil, a)
	})
	if err != nil {
		return domain.Adjustment{}, err
	}
	return a, nil
}

func (s *InventoryService) ListAdjustments(ctx context.Context) ([]domain.Adjustment, error) {
	return s.Store.Adjustments().ListAdjustments(ctx)
}

// applyDelta upserts the inventory row for the location and shifts its
// quantity. Runs inside the caller's transaction, so concurrent moves on the
// same location serialize at commit.
func (s *InventoryService) applyDelta(ctx context.Context, tx store.Tx, productID idx.ID, warehouseID *idx.ID, binID *idx.ID, delta float64) error {
	if warehouseID == nil {
		return fmt.Errorf("stock move missing warehouse for quantity change")
	}

	now := time.Now().UTC()
	item, err := tx.InventoryItems().GetItemAt(ctx, productID, *warehouseID, binID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return tx.InventoryItems().CreateItem(ctx, domain.InventoryItem{
				ID:          idx.New(),
				ProductID:   productID,
				WarehouseID: *warehouseID,
				BinID:       binID,
				Quantity:    delta,
				LastUpdated: now,
			})
		}
		return err
	}

	return tx.InventoryItems().UpdateItemQuantity(ctx, item.ID, item.Quantity+delta, now)
}

// trackingMove mirrors the adjustment as an adjustment-typed stock move.
// Positive changes point at the destination, negative at the source.
func trackingMove(a domain.Adjustment) domain.StockMove {
	reference := a.ID.String()
	move := domain.StockMove{
		ID:        idx.New(),
		ProductID: a.ProductID,
		MoveType:  domain.MoveAdjustment,
		Quantity:  a.QuantityChange,
		Reference: &reference,
		Notes:     &a.Reason,
		CreatedAt: a.CreatedAt,
	}
	if a.QuantityChange > 0 {
		move.ToWarehouseID = &a.WarehouseID
		move.ToBinID = a.BinID
	} else {
		move.Quantity = -a.QuantityChange
		move.FromWarehouseID = &a.WarehouseID
		move.FromBinID = a.BinID
	}
	return move
}

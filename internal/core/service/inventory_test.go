package service

import (
	"context"
	"testing"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newInventory(t *testing.T) (*InventoryService, domain.User) {
	t.Helper()
	st := newTestStore(t)
	svc := &InventoryService{Store: st, Audit: &AuditService{Store: st}}
	actor := createTestUser(t, st, "officer@example.com", "pw", domain.RoleInventoryOfficer, false)
	return svc, actor
}

func seedProductAndWarehouse(t *testing.T, svc *InventoryService, actor domain.User) (domain.Product, domain.Warehouse) {
	t.Helper()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, actor, domain.Product{Code: "WID-1", Name: "Widget"})
	require.NoError(t, err)
	warehouse, err := svc.CreateWarehouse(ctx, actor, domain.Warehouse{Code: "WH-1", Name: "Main"})
	require.NoError(t, err)
	return product, warehouse
}

func quantityAt(t *testing.T, svc *InventoryService, productID, warehouseID idx.ID) float64 {
	t.Helper()
	items, err := svc.ListItems(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	if len(items) == 0 {
		return 0
	}
	require.Len(t, items, 1)
	return items[0].Quantity
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("create audits and defaults unit", func(t *testing.T) {
		svc, actor := newInventory(t)

		product, err := svc.CreateProduct(ctx, actor, domain.Product{Code: "WID-1", Name: "Widget"})
		require.NoError(t, err)
		require.Equal(t, "pcs", product.Unit)

		entries, err := svc.Audit.Query(ctx, store.AuditFilter{ResourceType: "product"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, product.ID.String(), entries[0].ResourceID)
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		svc, actor := newInventory(t)

		_, err := svc.CreateProduct(ctx, actor, domain.Product{Code: "WID-1", Name: "Widget"})
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, actor, domain.Product{Code: "WID-1", Name: "Widget Again"})
		require.ErrorIs(t, err, ErrDuplicateCode)
	})
}

func TestCreateBin(t *testing.T) {
	ctx := context.Background()
	svc, actor := newInventory(t)
	_, warehouse := seedProductAndWarehouse(t, svc, actor)

	t.Run("requires existing warehouse", func(t *testing.T) {
		_, err := svc.CreateBin(ctx, actor, domain.Bin{WarehouseID: idx.New(), Code: "B-1", Name: "Bin"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("create and filter by warehouse", func(t *testing.T) {
		bin, err := svc.CreateBin(ctx, actor, domain.Bin{WarehouseID: warehouse.ID, Code: "B-1", Name: "Bin"})
		require.NoError(t, err)

		bins, err := svc.ListBins(ctx, warehouse.ID)
		require.NoError(t, err)
		require.Len(t, bins, 1)
		require.Equal(t, bin.ID, bins[0].ID)

		none, err := svc.ListBins(ctx, idx.New())
		require.NoError(t, err)
		require.Empty(t, none)
	})
}

func TestStockMoves(t *testing.T) {
	ctx := context.Background()

	t.Run("receipt adds to destination", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     product.ID,
			MoveType:      domain.MoveReceipt,
			ToWarehouseID: &warehouse.ID,
			Quantity:      10,
		})
		require.NoError(t, err)
		require.Equal(t, 10.0, quantityAt(t, svc, product.ID, warehouse.ID))
	})

	t.Run("issue subtracts from source", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     product.ID,
			MoveType:      domain.MoveReceipt,
			ToWarehouseID: &warehouse.ID,
			Quantity:      10,
		})
		require.NoError(t, err)

		_, err = svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:       product.ID,
			MoveType:        domain.MoveIssue,
			FromWarehouseID: &warehouse.ID,
			Quantity:        4,
		})
		require.NoError(t, err)
		require.Equal(t, 6.0, quantityAt(t, svc, product.ID, warehouse.ID))
	})

	t.Run("transfer shifts between warehouses", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, from := seedProductAndWarehouse(t, svc, actor)
		to, err := svc.CreateWarehouse(ctx, actor, domain.Warehouse{Code: "WH-2", Name: "Second"})
		require.NoError(t, err)

		_, err = svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     product.ID,
			MoveType:      domain.MoveReceipt,
			ToWarehouseID: &from.ID,
			Quantity:      10,
		})
		require.NoError(t, err)

		_, err = svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:       product.ID,
			MoveType:        domain.MoveTransfer,
			FromWarehouseID: &from.ID,
			ToWarehouseID:   &to.ID,
			Quantity:        3,
		})
		require.NoError(t, err)

		require.Equal(t, 7.0, quantityAt(t, svc, product.ID, from.ID))
		require.Equal(t, 3.0, quantityAt(t, svc, product.ID, to.ID))
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		svc, actor := newInventory(t)
		_, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     idx.New(),
			MoveType:      domain.MoveReceipt,
			ToWarehouseID: &warehouse.ID,
			Quantity:      1,
		})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("adjustment move type rejected on the move endpoint", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     product.ID,
			MoveType:      domain.MoveAdjustment,
			ToWarehouseID: &warehouse.ID,
			Quantity:      1,
		})
		require.ErrorIs(t, err, ErrInvalidMoveType)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateStockMove(ctx, actor, domain.StockMove{
			ProductID:     product.ID,
			MoveType:      domain.MoveReceipt,
			ToWarehouseID: &warehouse.ID,
			Quantity:      0,
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestAdjustments(t *testing.T) {
	ctx := context.Background()

	t.Run("positive adjustment raises quantity and emits tracking move", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		adj, err := svc.CreateAdjustment(ctx, actor, domain.Adjustment{
			ProductID:      product.ID,
			WarehouseID:    warehouse.ID,
			QuantityChange: 5,
			Reason:         "initial count",
		})
		require.NoError(t, err)
		require.Equal(t, 5.0, quantityAt(t, svc, product.ID, warehouse.ID))

		moves, err := svc.ListStockMoves(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, moves, 1)
		require.Equal(t, domain.MoveAdjustment, moves[0].MoveType)
		require.Equal(t, 5.0, moves[0].Quantity)
		require.NotNil(t, moves[0].Reference)
		require.Equal(t, adj.ID.String(), *moves[0].Reference)
		require.Equal(t, warehouse.ID, *moves[0].ToWarehouseID)
		require.Nil(t, moves[0].FromWarehouseID)
	})

	t.Run("negative adjustment lowers quantity with absolute move quantity", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateAdjustment(ctx, actor, domain.Adjustment{
			ProductID:      product.ID,
			WarehouseID:    warehouse.ID,
			QuantityChange: -2,
			Reason:         "damage",
		})
		require.NoError(t, err)
		require.Equal(t, -2.0, quantityAt(t, svc, product.ID, warehouse.ID))

		moves, err := svc.ListStockMoves(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, moves, 1)
		require.Equal(t, 2.0, moves[0].Quantity)
		require.Equal(t, warehouse.ID, *moves[0].FromWarehouseID)
		require.Nil(t, moves[0].ToWarehouseID)
	})

	t.Run("audits exactly one entry for the adjustment", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		adj, err := svc.CreateAdjustment(ctx, actor, domain.Adjustment{
			ProductID:      product.ID,
			WarehouseID:    warehouse.ID,
			QuantityChange: 1,
			Reason:         "count",
		})
		require.NoError(t, err)

		entries, err := svc.Audit.Query(ctx, store.AuditFilter{ResourceType: "adjustment"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, adj.ID.String(), entries[0].ResourceID)

		// The derived tracking move is not audited separately.
		moveEntries, err := svc.Audit.Query(ctx, store.AuditFilter{ResourceType: "stock_move"})
		require.NoError(t, err)
		require.Empty(t, moveEntries)
	})

	t.Run("zero change rejected", func(t *testing.T) {
		svc, actor := newInventory(t)
		product, warehouse := seedProductAndWarehouse(t, svc, actor)

		_, err := svc.CreateAdjustment(ctx, actor, domain.Adjustment{
			ProductID:      product.ID,
			WarehouseID:    warehouse.ID,
			QuantityChange: 0,
			Reason:         "noop",
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestAuditOrderingNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, actor := newInventory(t)

	first, err := svc.CreateProduct(ctx, actor, domain.Product{Code: "A-1", Name: "First"})
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, actor, domain.Product{Code: "A-2", Name: "Second"})
	require.NoError(t, err)

	entries, err := svc.Audit.Query(ctx, store.AuditFilter{ResourceType: "product"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID.String(), entries[0].ResourceID)
	require.Equal(t, first.ID.String(), entries[1].ResourceID)
}

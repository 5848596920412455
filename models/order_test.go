package models_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/models"
)

func TestCreateOrderRecordsOneSalePerLine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "orderco")

	productA := buildSellableProduct(t, db, org.ID, 5, "2.00")
	productB := buildSellableProduct(t, db, org.ID, 5, "3.00")

	order, err := models.CreateOrder(ctx, db, org.ID, &models.NewOrder{
		Lines: []models.NewOrderLine{
			{ProductId: productA.ID, Quantity: 2, UnitPrice: mustDecimal(t, "10.00")},
			{ProductId: productB.ID, Quantity: 1, UnitPrice: mustDecimal(t, "15.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Status != models.OrderStatusCreated {
		t.Fatalf("status = %s, want created", order.Status)
	}
	wantDecimal(t, order.TotalPrice, "35.00", "order total")
	if len(order.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(order.Lines))
	}
	for _, line := range order.Lines {
		if line.SaleTxnId == "" {
			t.Fatalf("line missing sale txn: %+v", line)
		}
		if _, err := models.GetSale(ctx, db, line.SaleTxnId); err != nil {
			t.Fatalf("GetSale for line: %v", err)
		}
	}

	gotA, _ := models.GetProduct(ctx, db, productA.ID)
	if gotA.Quantity != 3 {
		t.Fatalf("product A quantity = %d, want 3", gotA.Quantity)
	}
	gotB, _ := models.GetProduct(ctx, db, productB.ID)
	if gotB.Quantity != 4 {
		t.Fatalf("product B quantity = %d, want 4", gotB.Quantity)
	}
}

func TestCreateOrderIsAtomicAcrossLines(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "atomicorder")

	plenty := buildSellableProduct(t, db, org.ID, 5, "1.00")
	scarce := buildSellableProduct(t, db, org.ID, 1, "2.00")

	_, err := models.CreateOrder(ctx, db, org.ID, &models.NewOrder{
		Lines: []models.NewOrderLine{
			{ProductId: plenty.ID, Quantity: 2, UnitPrice: mustDecimal(t, "5.00")},
			{ProductId: scarce.ID, Quantity: 3, UnitPrice: mustDecimal(t, "5.00")},
		},
	})
	if !errors.Is(err, models.ErrInsufficientInventory) {
		t.Fatalf("err = %v, want ErrInsufficientInventory", err)
	}

	// First line must have rolled back with the failed second line.
	gotPlenty, _ := models.GetProduct(ctx, db, plenty.ID)
	if gotPlenty.Quantity != 5 {
		t.Fatalf("plenty quantity = %d, want 5", gotPlenty.Quantity)
	}
	orders, _ := models.GetOrdersByOrg(ctx, db, org.ID, "", 0, 10)
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func createShippedOrder(t *testing.T, db *gorm.DB, orgId string, product *models.Product, qty int) *models.Order {
	t.Helper()
	ctx := context.Background()
	order, err := models.CreateOrder(ctx, db, orgId, &models.NewOrder{
		Lines: []models.NewOrderLine{
			{ProductId: product.ID, Quantity: qty, UnitPrice: mustDecimal(t, "10.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	for _, next := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusShipped} {
		if order, err = models.UpdateOrderStatus(ctx, db, order.ID, next); err != nil {
			t.Fatalf("UpdateOrderStatus(%s): %v", next, err)
		}
	}
	return order
}

func TestOrderStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "fsmco")

	product := buildSellableProduct(t, db, org.ID, 10, "1.00")
	order, err := models.CreateOrder(ctx, db, org.ID, &models.NewOrder{
		Lines: []models.NewOrderLine{
			{ProductId: product.ID, Quantity: 1, UnitPrice: mustDecimal(t, "5.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// created cannot jump straight to shipped.
	if _, err := models.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusShipped); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("created->shipped err = %v, want ErrInvalidTransition", err)
	}

	// created -> completed -> shipped -> closed walks the lifecycle.
	for _, next := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusShipped, models.OrderStatusClosed} {
		if order, err = models.UpdateOrderStatus(ctx, db, order.ID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	// closed is terminal.
	if _, err := models.UpdateOrderStatus(ctx, db, order.ID, models.OrderStatusCanceled); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("closed->canceled err = %v, want ErrInvalidTransition", err)
	}
}

func TestReturnOrderRequiresShipped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "earlyreturn")

	product := buildSellableProduct(t, db, org.ID, 5, "1.00")
	order, err := models.CreateOrder(ctx, db, org.ID, &models.NewOrder{
		Lines: []models.NewOrderLine{
			{ProductId: product.ID, Quantity: 1, UnitPrice: mustDecimal(t, "5.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if _, err := models.ReturnOrder(ctx, db, order.ID, true); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("return from created err = %v, want ErrInvalidTransition", err)
	}
}

func TestReturnOrderWithRestock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "restockco")

	product := buildSellableProduct(t, db, org.ID, 5, "1.00")
	order := createShippedOrder(t, db, org.ID, product, 2)

	returned, err := models.ReturnOrder(ctx, db, order.ID, true)
	if err != nil {
		t.Fatalf("ReturnOrder: %v", err)
	}
	if returned.Status != models.OrderStatusCanceled {
		t.Fatalf("status = %s, want canceled", returned.Status)
	}
	if !strings.Contains(returned.Notes, "returned") {
		t.Fatalf("notes %q missing return marker", returned.Notes)
	}

	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5 (restocked)", gotProduct.Quantity)
	}

	// Restock shows up in the ledger as an adjustment, the original sale
	// transaction is untouched.
	txns, _ := models.GetProductTransactionsByProduct(ctx, db, product.ID, 0, 20)
	var sales, adjustments int
	for _, txn := range txns {
		switch txn.TxnType {
		case models.ProductTxnTypeSale:
			sales++
		case models.ProductTxnTypeAdjustment:
			adjustments++
		}
	}
	if sales != 1 || adjustments != 1 {
		t.Fatalf("sales=%d adjustments=%d, want 1/1", sales, adjustments)
	}
}

func TestReturnOrderWithoutRestock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "norestock")

	product := buildSellableProduct(t, db, org.ID, 5, "1.00")
	order := createShippedOrder(t, db, org.ID, product, 2)

	returned, err := models.ReturnOrder(ctx, db, order.ID, false)
	if err != nil {
		t.Fatalf("ReturnOrder: %v", err)
	}
	if returned.Status != models.OrderStatusCanceled {
		t.Fatalf("status = %s, want canceled", returned.Status)
	}

	// Goods written off: sold quantity stays gone.
	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3 (no restock)", gotProduct.Quantity)
	}
}

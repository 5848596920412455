package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/models"
)

// buildSellableProduct leaves the product with `qty` sellable units that
// cost `unitCost` each to build.
func buildSellableProduct(t *testing.T, db *gorm.DB, orgId string, qty int, partCost string) *models.Product {
	t.Helper()
	part := newTestPart(t, db, orgId, "Material-"+partCost, qty*2, partCost)
	product := newTestProduct(t, db, orgId, "Sellable-"+partCost, []models.NewRecipeLine{
		{PartId: part.ID, Quantity: decimal.NewFromInt(2)},
	})
	if _, err := models.BuildProduct(context.Background(), db, &models.BuildRequest{
		ProductId: product.ID,
		BuildQty:  qty,
	}); err != nil {
		t.Fatalf("BuildProduct: %v", err)
	}
	return product
}

func TestRecordSaleSnapshotsPriceAndCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "saleco")

	// 2 units of a 2.00 part per product: build cost 4.00/unit.
	product := buildSellableProduct(t, db, org.ID, 5, "2.00")

	sale, err := models.RecordSale(ctx, db, &models.NewSale{
		ProductId: product.ID,
		Quantity:  2,
		UnitPrice: mustDecimal(t, "10.00"),
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	wantDecimal(t, sale.UnitCostAtSale, "4.00", "unit cost at sale")
	wantDecimal(t, sale.TotalRevenue, "20.00", "total revenue")
	wantDecimal(t, sale.Profit, "12.00", "profit")

	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 3 {
		t.Fatalf("product quantity = %d, want 3", gotProduct.Quantity)
	}
}

func TestRecordSaleInsufficientQuantity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "shortco")

	product := buildSellableProduct(t, db, org.ID, 1, "1.00")

	_, err := models.RecordSale(ctx, db, &models.NewSale{
		ProductId: product.ID,
		Quantity:  2,
		UnitPrice: mustDecimal(t, "5.00"),
	})
	if !errors.Is(err, models.ErrInsufficientInventory) {
		t.Fatalf("err = %v, want ErrInsufficientInventory", err)
	}
	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 1 {
		t.Fatalf("product quantity = %d, want 1", gotProduct.Quantity)
	}
}

func TestSaleSnapshotUnaffectedByLaterCostChanges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "snapco")

	part := newTestPart(t, db, org.ID, "Stone", 20, "1.00")
	product := newTestProduct(t, db, org.ID, "Pendant", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: decimal.NewFromInt(1)},
	})
	if _, err := models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 5}); err != nil {
		t.Fatalf("BuildProduct: %v", err)
	}

	sale, err := models.RecordSale(ctx, db, &models.NewSale{
		ProductId: product.ID,
		Quantity:  1,
		UnitPrice: mustDecimal(t, "9.00"),
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	wantDecimal(t, sale.UnitCostAtSale, "1.00", "cost at first sale")

	// Parts get pricier and the product is rebuilt at the new cost.
	cost := mustDecimal(t, "5.00")
	if _, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypePurchase,
		Qty:     100,
		Cost:    &cost,
	}); err != nil {
		t.Fatalf("AdjustPartStock: %v", err)
	}
	if _, err := models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 1}); err != nil {
		t.Fatalf("second BuildProduct: %v", err)
	}

	// The historical sale still reports its original snapshot.
	reread, err := models.GetSale(ctx, db, sale.TxnId)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	wantDecimal(t, reread.UnitCostAtSale, "1.00", "historical cost snapshot")
	wantDecimal(t, reread.Profit, "8.00", "historical profit")
}

func TestProfitSummaryAggregatesPerProduct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "profitco")

	product := buildSellableProduct(t, db, org.ID, 10, "2.00")
	for i := 0; i < 3; i++ {
		if _, err := models.RecordSale(ctx, db, &models.NewSale{
			ProductId: product.ID,
			Quantity:  2,
			UnitPrice: mustDecimal(t, "10.00"),
		}); err != nil {
			t.Fatalf("RecordSale: %v", err)
		}
	}

	summaries, err := models.GetProductProfitSummaries(ctx, db, org.ID, nil)
	if err != nil {
		t.Fatalf("GetProductProfitSummaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.UnitsSold != 6 {
		t.Fatalf("units sold = %d, want 6", s.UnitsSold)
	}
	wantDecimal(t, s.Revenue, "60.00", "revenue")
	wantDecimal(t, s.Cost, "24.00", "cost")
	wantDecimal(t, s.Profit, "36.00", "profit")
	if s.ProductName != product.Name {
		t.Fatalf("product name = %q, want %q", s.ProductName, product.Name)
	}
}

package models_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/craftflowhq/craftflow_backend/models"
)

func TestBuildProductConsumesPartsAndCostsBuild(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "buildco")

	part := newTestPart(t, db, org.ID, "Part A", 10, "2.00")
	product := newTestProduct(t, db, org.ID, "Widget", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: decimal.NewFromInt(2), Unit: "pcs"},
	})

	result, err := models.BuildProduct(ctx, db, &models.BuildRequest{
		ProductId: product.ID,
		BuildQty:  3,
	})
	if err != nil {
		t.Fatalf("BuildProduct: %v", err)
	}

	wantDecimal(t, result.UnitBuildCost, "4.00", "unit build cost")
	if result.NewProductQuantity != 3 {
		t.Fatalf("new product quantity = %d, want 3", result.NewProductQuantity)
	}

	gotPart, err := models.GetPart(ctx, db, part.ID)
	if err != nil {
		t.Fatalf("GetPart: %v", err)
	}
	if gotPart.Stock != 4 {
		t.Fatalf("part stock = %d, want 4", gotPart.Stock)
	}

	gotProduct, err := models.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if gotProduct.Quantity != 3 {
		t.Fatalf("product quantity = %d, want 3", gotProduct.Quantity)
	}
	wantDecimal(t, gotProduct.TotalCost, "4.00", "product total_cost")

	// One product transaction and one part transaction linked to it.
	txns, err := models.GetProductTransactionsByProduct(ctx, db, product.ID, 0, 10)
	if err != nil {
		t.Fatalf("GetProductTransactionsByProduct: %v", err)
	}
	if len(txns) != 1 || txns[0].TxnType != models.ProductTxnTypeBuildProduct {
		t.Fatalf("unexpected product transactions: %+v", txns)
	}
	partTxns, err := models.GetPartTransactionsByPart(ctx, db, part.ID, 0, 10)
	if err != nil {
		t.Fatalf("GetPartTransactionsByPart: %v", err)
	}
	var buildTxns int
	for _, txn := range partTxns {
		if txn.TxnType == models.PartTxnTypeBuildProduct {
			buildTxns++
			if txn.ProductTxnId == nil || *txn.ProductTxnId != txns[0].ID {
				t.Fatalf("part build txn not linked to product txn: %+v", txn)
			}
			wantDecimal(t, txn.Qty, "6", "consumed qty")
		}
	}
	if buildTxns != 1 {
		t.Fatalf("build part transactions = %d, want 1", buildTxns)
	}
}

func TestBuildProductInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "atomic")

	plenty := newTestPart(t, db, org.ID, "Plenty", 100, "1.00")
	scarce := newTestPart(t, db, org.ID, "Scarce", 1, "1.00")
	product := newTestProduct(t, db, org.ID, "Widget", []models.NewRecipeLine{
		{PartId: plenty.ID, Quantity: decimal.NewFromInt(1)},
		{PartId: scarce.ID, Quantity: decimal.NewFromInt(2)},
	})

	_, err := models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 1})
	if !errors.Is(err, models.ErrInsufficientInventory) {
		t.Fatalf("err = %v, want ErrInsufficientInventory", err)
	}

	// No partial consumption: both parts and the product are unchanged.
	gotPlenty, _ := models.GetPart(ctx, db, plenty.ID)
	if gotPlenty.Stock != 100 {
		t.Fatalf("plenty stock = %d, want 100", gotPlenty.Stock)
	}
	gotScarce, _ := models.GetPart(ctx, db, scarce.ID)
	if gotScarce.Stock != 1 {
		t.Fatalf("scarce stock = %d, want 1", gotScarce.Stock)
	}
	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 0 {
		t.Fatalf("product quantity = %d, want 0", gotProduct.Quantity)
	}
	txns, _ := models.GetProductTransactionsByProduct(ctx, db, product.ID, 0, 10)
	if len(txns) != 0 {
		t.Fatalf("expected no product transactions, got %d", len(txns))
	}
}

func TestBuildProductWithoutRecipeFails(t *testing.T) {
	db := newTestDB(t)
	org := newTestOrg(t, db, "norecipe")
	product := newTestProduct(t, db, org.ID, "Bare", nil)

	_, err := models.BuildProduct(context.Background(), db, &models.BuildRequest{ProductId: product.ID, BuildQty: 1})
	if !errors.Is(err, models.ErrNoRecipe) {
		t.Fatalf("err = %v, want ErrNoRecipe", err)
	}
}

func TestBuildProductFractionalRecipeConsumesWholeUnits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "fractional")

	part := newTestPart(t, db, org.ID, "Ribbon", 10, "1.00")
	product := newTestProduct(t, db, org.ID, "Bow", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: mustDecimal(t, "0.5")},
	})

	// 3 x 0.5 = 1.5 rounds up to 2 physical units consumed.
	if _, err := models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 3}); err != nil {
		t.Fatalf("BuildProduct: %v", err)
	}
	gotPart, _ := models.GetPart(ctx, db, part.ID)
	if gotPart.Stock != 8 {
		t.Fatalf("part stock = %d, want 8", gotPart.Stock)
	}

	// Costing still uses the exact recipe quantity: 0.5 x 1.00.
	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	wantDecimal(t, gotProduct.TotalCost, "0.5", "unit build cost")
}

func TestConcurrentBuildsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "race")

	// Stock for exactly 5 single-unit builds.
	part := newTestPart(t, db, org.ID, "Limited", 5, "1.00")
	product := newTestProduct(t, db, org.ID, "Widget", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: decimal.NewFromInt(1)},
	})

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 1})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrInsufficientInventory):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 5 || insufficient != 5 {
		t.Fatalf("ok=%d insufficient=%d, want 5/5", ok, insufficient)
	}

	gotPart, _ := models.GetPart(ctx, db, part.ID)
	if gotPart.Stock != 0 {
		t.Fatalf("part stock = %d, want 0", gotPart.Stock)
	}
	gotProduct, _ := models.GetProduct(ctx, db, product.ID)
	if gotProduct.Quantity != 5 {
		t.Fatalf("product quantity = %d, want 5", gotProduct.Quantity)
	}
}

func TestPartLedgerSumMatchesStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "ledger")

	part := newTestPart(t, db, org.ID, "Tracked", 10, "2.00")
	product := newTestProduct(t, db, org.ID, "Widget", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: decimal.NewFromInt(2)},
	})

	if _, err := models.BuildProduct(ctx, db, &models.BuildRequest{ProductId: product.ID, BuildQty: 2}); err != nil {
		t.Fatalf("BuildProduct: %v", err)
	}
	cost := mustDecimal(t, "3.00")
	if _, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypePurchase,
		Qty:     8,
		Cost:    &cost,
	}); err != nil {
		t.Fatalf("AdjustPartStock purchase: %v", err)
	}
	if _, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypeLoss,
		Qty:     3,
	}); err != nil {
		t.Fatalf("AdjustPartStock loss: %v", err)
	}

	gotPart, err := models.GetPart(ctx, db, part.ID)
	if err != nil {
		t.Fatalf("GetPart: %v", err)
	}
	sum, err := models.PartLedgerSum(ctx, db, part.ID)
	if err != nil {
		t.Fatalf("PartLedgerSum: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(int64(gotPart.Stock))) {
		t.Fatalf("ledger sum %s != stock %d", sum.String(), gotPart.Stock)
	}

	drifts, err := models.FindInventoryDrift(ctx, db, org.ID)
	if err != nil {
		t.Fatalf("FindInventoryDrift: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("expected no drift, got %+v", drifts)
	}
}

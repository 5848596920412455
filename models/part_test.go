package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/craftflowhq/craftflow_backend/models"
)

func TestPurchaseReaveragesUnitCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "avgco")

	part := newTestPart(t, db, org.ID, "Bead", 10, "2.00")

	// (10 x 2.00 + 10 x 4.00) / 20 = 3.00
	cost := mustDecimal(t, "4.00")
	result, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypePurchase,
		Qty:     10,
		Cost:    &cost,
	})
	if err != nil {
		t.Fatalf("AdjustPartStock: %v", err)
	}
	if result.NewStock != 20 {
		t.Fatalf("new stock = %d, want 20", result.NewStock)
	}
	wantDecimal(t, result.NewUnitCost, "3.00", "new unit cost")
}

func TestPurchaseTotalCostTypeDividesByQty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "totalco")

	part := newTestPart(t, db, org.ID, "Wire", 0, "0")

	total := mustDecimal(t, "50.00")
	result, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType:  models.PartTxnTypePurchase,
		Qty:      20,
		Cost:     &total,
		CostType: models.CostTypeTotal,
	})
	if err != nil {
		t.Fatalf("AdjustPartStock: %v", err)
	}
	// Zero prior stock: unit cost becomes the purchase price outright.
	wantDecimal(t, result.NewUnitCost, "2.5", "new unit cost")
	if result.NewStock != 20 {
		t.Fatalf("new stock = %d, want 20", result.NewStock)
	}
}

func TestLossKeepsValuationAndGuardsStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "lossco")

	part := newTestPart(t, db, org.ID, "Clasp", 5, "1.50")

	result, err := models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypeLoss,
		Qty:     2,
		Notes:   "dropped a tray",
	})
	if err != nil {
		t.Fatalf("AdjustPartStock: %v", err)
	}
	if result.NewStock != 3 {
		t.Fatalf("new stock = %d, want 3", result.NewStock)
	}
	wantDecimal(t, result.NewUnitCost, "1.50", "unit cost after loss")

	_, err = models.AdjustPartStock(ctx, db, part.ID, &models.PartAdjustment{
		TxnType: models.PartTxnTypeLoss,
		Qty:     4,
	})
	if !errors.Is(err, models.ErrInsufficientInventory) {
		t.Fatalf("err = %v, want ErrInsufficientInventory", err)
	}
	gotPart, _ := models.GetPart(ctx, db, part.ID)
	if gotPart.Stock != 3 {
		t.Fatalf("stock after rejected loss = %d, want 3", gotPart.Stock)
	}
}

func TestPartUpdateCannotTouchDerivedFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "updco")

	part := newTestPart(t, db, org.ID, "Cord", 7, "2.25")

	name := "Waxed Cord"
	notes := "supplier: northside"
	updated, err := models.UpdatePart(ctx, db, part.ID, &models.PartUpdate{
		Name:  &name,
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("name = %q, want %q", updated.Name, name)
	}
	if updated.Stock != 7 {
		t.Fatalf("stock = %d, want 7", updated.Stock)
	}
	wantDecimal(t, updated.UnitCost, "2.25", "unit cost")
}

func TestDeletePartBlockedByRecipeReference(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "delco")

	part := newTestPart(t, db, org.ID, "Hook", 3, "1.00")
	newTestProduct(t, db, org.ID, "Earring", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: mustDecimal(t, "2")},
	})

	if err := models.DeletePart(ctx, db, part.ID); err == nil {
		t.Fatal("expected delete to fail while a recipe references the part")
	}
	if _, err := models.GetPart(ctx, db, part.ID); err != nil {
		t.Fatalf("part should still exist: %v", err)
	}
}

func TestDuplicatePartNameRejectedPerOrg(t *testing.T) {
	db := newTestDB(t)
	org := newTestOrg(t, db, "dupco")
	other := newTestOrg(t, db, "otherco")

	newTestPart(t, db, org.ID, "Bead", 0, "0")

	_, err := models.CreatePart(context.Background(), db, &models.NewPart{
		OrgId: org.ID,
		Name:  "Bead",
	})
	if err == nil {
		t.Fatal("expected duplicate name within org to fail")
	}

	// Same name in another org is fine.
	if _, err := models.CreatePart(context.Background(), db, &models.NewPart{
		OrgId: other.ID,
		Name:  "Bead",
	}); err != nil {
		t.Fatalf("same name in other org should succeed: %v", err)
	}
}

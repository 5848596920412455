package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/craftflowhq/craftflow_backend/models"
)

func TestBulkUpsertLeavesAbsentLinesUntouched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "bomco")

	partA := newTestPart(t, db, org.ID, "bead", 50, "0.10")
	partB := newTestPart(t, db, org.ID, "cord", 50, "0.50")
	product := newTestProduct(t, db, org.ID, "bracelet", []models.NewRecipeLine{
		{PartId: partA.ID, Quantity: mustDecimal(t, "8")},
		{PartId: partB.ID, Quantity: mustDecimal(t, "1")},
	})

	// Upsert touches only partA; partB keeps its original quantity.
	lines, err := models.BulkUpsertRecipeLines(ctx, db, product.ID, []models.NewRecipeLine{
		{PartId: partA.ID, Quantity: mustDecimal(t, "12")},
	})
	if err != nil {
		t.Fatalf("BulkUpsertRecipeLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	byPart := map[string]models.RecipeLine{}
	for _, line := range lines {
		byPart[line.PartId] = line
	}
	wantDecimal(t, byPart[partA.ID].Quantity, "12", "updated line quantity")
	wantDecimal(t, byPart[partB.ID].Quantity, "1", "untouched line quantity")
}

func TestBulkUpsertInsertsNewLines(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "growco")

	partA := newTestPart(t, db, org.ID, "hook", 20, "0.25")
	partB := newTestPart(t, db, org.ID, "stone", 20, "1.50")
	product := newTestProduct(t, db, org.ID, "earring", []models.NewRecipeLine{
		{PartId: partA.ID, Quantity: mustDecimal(t, "2")},
	})

	lines, err := models.BulkUpsertRecipeLines(ctx, db, product.ID, []models.NewRecipeLine{
		{PartId: partB.ID, Quantity: mustDecimal(t, "2"), Unit: "pcs"},
	})
	if err != nil {
		t.Fatalf("BulkUpsertRecipeLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
}

func TestRecipeRejectsCrossTenantPart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orgA := newTestOrg(t, db, "tenant-a")
	orgB := newTestOrg(t, db, "tenant-b")

	foreignPart := newTestPart(t, db, orgB.ID, "foreign", 10, "1.00")
	product := newTestProduct(t, db, orgA.ID, "local", nil)

	_, err := models.CreateRecipeLine(ctx, db, product.ID, &models.NewRecipeLine{
		PartId:   foreignPart.ID,
		Quantity: mustDecimal(t, "1"),
	})
	if !errors.Is(err, models.ErrCrossTenantReference) {
		t.Fatalf("create err = %v, want ErrCrossTenantReference", err)
	}

	_, err = models.BulkUpsertRecipeLines(ctx, db, product.ID, []models.NewRecipeLine{
		{PartId: foreignPart.ID, Quantity: mustDecimal(t, "1")},
	})
	if !errors.Is(err, models.ErrCrossTenantReference) {
		t.Fatalf("bulk err = %v, want ErrCrossTenantReference", err)
	}
}

func TestDuplicateRecipeLineRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "dupco")

	part := newTestPart(t, db, org.ID, "pin", 10, "0.05")
	product := newTestProduct(t, db, org.ID, "brooch", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: mustDecimal(t, "3")},
	})

	_, err := models.CreateRecipeLine(ctx, db, product.ID, &models.NewRecipeLine{
		PartId:   part.ID,
		Quantity: mustDecimal(t, "5"),
	})
	if !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestRecipeQuantityMustBePositive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "posco")

	part := newTestPart(t, db, org.ID, "felt", 10, "0.30")
	product := newTestProduct(t, db, org.ID, "pad", nil)

	_, err := models.CreateRecipeLine(ctx, db, product.ID, &models.NewRecipeLine{
		PartId:   part.ID,
		Quantity: mustDecimal(t, "0"),
	})
	if err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestClearRecipeThenRebuild(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "clearco")

	partA := newTestPart(t, db, org.ID, "old-part", 10, "1.00")
	partB := newTestPart(t, db, org.ID, "new-part", 10, "2.00")
	product := newTestProduct(t, db, org.ID, "rework", []models.NewRecipeLine{
		{PartId: partA.ID, Quantity: mustDecimal(t, "4")},
	})

	if err := models.DeleteAllRecipeLines(ctx, db, product.ID); err != nil {
		t.Fatalf("DeleteAllRecipeLines: %v", err)
	}
	lines, err := models.GetRecipeLines(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("GetRecipeLines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("lines = %d after clear, want 0", len(lines))
	}

	if _, err := models.BulkUpsertRecipeLines(ctx, db, product.ID, []models.NewRecipeLine{
		{PartId: partB.ID, Quantity: mustDecimal(t, "1")},
	}); err != nil {
		t.Fatalf("BulkUpsertRecipeLines: %v", err)
	}
	lines, _ = models.GetRecipeLines(ctx, db, product.ID)
	if len(lines) != 1 || lines[0].PartId != partB.ID {
		t.Fatalf("rebuilt recipe = %+v, want one line for new part", lines)
	}
}

func TestUpdateAndDeleteRecipeLine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "lineco")

	part := newTestPart(t, db, org.ID, "thread", 10, "0.20")
	product := newTestProduct(t, db, org.ID, "patch", []models.NewRecipeLine{
		{PartId: part.ID, Quantity: mustDecimal(t, "2")},
	})

	qty := mustDecimal(t, "3.5")
	line, err := models.UpdateRecipeLine(ctx, db, product.ID, part.ID, &models.RecipeLineUpdate{Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateRecipeLine: %v", err)
	}
	wantDecimal(t, line.Quantity, "3.5", "updated quantity")

	if err := models.DeleteRecipeLine(ctx, db, product.ID, part.ID); err != nil {
		t.Fatalf("DeleteRecipeLine: %v", err)
	}
	if err := models.DeleteRecipeLine(ctx, db, product.ID, part.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

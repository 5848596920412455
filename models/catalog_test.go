package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/craftflowhq/craftflow_backend/models"
)

func TestPartTypeLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "typecat")

	partType, err := models.CreatePartType(ctx, db, org.ID, "Findings")
	if err != nil {
		t.Fatalf("CreatePartType: %v", err)
	}
	subtype, err := models.CreatePartSubtype(ctx, db, partType.ID, "Clasps")
	if err != nil {
		t.Fatalf("CreatePartSubtype: %v", err)
	}

	renamed, err := models.RenamePartType(ctx, db, partType.ID, "Hardware")
	if err != nil {
		t.Fatalf("RenamePartType: %v", err)
	}
	if renamed.Name != "Hardware" {
		t.Fatalf("name = %q, want Hardware", renamed.Name)
	}

	types, err := models.GetPartTypesByOrg(ctx, db, org.ID)
	if err != nil {
		t.Fatalf("GetPartTypesByOrg: %v", err)
	}
	if len(types) != 1 || len(types[0].Subtypes) != 1 || types[0].Subtypes[0].ID != subtype.ID {
		t.Fatalf("types = %+v, want one type with one subtype", types)
	}
}

func TestDuplicatePartTypeNameRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "duptype")

	if _, err := models.CreatePartType(ctx, db, org.ID, "Beads"); err != nil {
		t.Fatalf("CreatePartType: %v", err)
	}
	if _, err := models.CreatePartType(ctx, db, org.ID, "Beads"); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
}

func TestDeletePartTypeClearsPartReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "cleartype")

	partType, err := models.CreatePartType(ctx, db, org.ID, "Wire")
	if err != nil {
		t.Fatalf("CreatePartType: %v", err)
	}
	subtype, err := models.CreatePartSubtype(ctx, db, partType.ID, "Copper")
	if err != nil {
		t.Fatalf("CreatePartSubtype: %v", err)
	}

	part := newTestPart(t, db, org.ID, "copper wire", 5, "0.20")
	if _, err := models.UpdatePart(ctx, db, part.ID, &models.PartUpdate{SubtypeId: &subtype.ID}); err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}

	if err := models.DeletePartType(ctx, db, partType.ID); err != nil {
		t.Fatalf("DeletePartType: %v", err)
	}

	got, err := models.GetPart(ctx, db, part.ID)
	if err != nil {
		t.Fatalf("GetPart: %v", err)
	}
	if got.SubtypeId != nil {
		t.Fatalf("subtype_id = %v, want cleared", *got.SubtypeId)
	}
	types, _ := models.GetPartTypesByOrg(ctx, db, org.ID)
	if len(types) != 0 {
		t.Fatalf("types = %d after delete, want 0", len(types))
	}
}

func TestStatusLabelCatalogIsPerOrg(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orgA := newTestOrg(t, db, "labels-a")
	orgB := newTestOrg(t, db, "labels-b")

	if _, err := models.CreatePartStatusLabel(ctx, db, orgA.ID, "on-order"); err != nil {
		t.Fatalf("CreatePartStatusLabel: %v", err)
	}
	// Same name in another org is fine.
	if _, err := models.CreatePartStatusLabel(ctx, db, orgB.ID, "on-order"); err != nil {
		t.Fatalf("CreatePartStatusLabel other org: %v", err)
	}

	labels, err := models.GetPartStatusLabels(ctx, db, orgA.ID)
	if err != nil {
		t.Fatalf("GetPartStatusLabels: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("labels = %d, want 1", len(labels))
	}

	if err := models.DeletePartStatusLabel(ctx, db, labels[0].ID); err != nil {
		t.Fatalf("DeletePartStatusLabel: %v", err)
	}
	labels, _ = models.GetPartStatusLabels(ctx, db, orgA.ID)
	if len(labels) != 0 {
		t.Fatalf("labels = %d after delete, want 0", len(labels))
	}
}

func TestDeletePlatformDetachesOrders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	org := newTestOrg(t, db, "platformco")

	platform, err := models.CreatePlatform(ctx, db, &models.NewPlatform{
		OrgId: org.ID,
		Name:  "Etsy",
		URL:   "https://etsy.example",
	})
	if err != nil {
		t.Fatalf("CreatePlatform: %v", err)
	}

	product := buildSellableProduct(t, db, org.ID, 3, "1.00")
	order, err := models.CreateOrder(ctx, db, org.ID, &models.NewOrder{
		PlatformId: &platform.ID,
		Lines: []models.NewOrderLine{
			{ProductId: product.ID, Quantity: 1, UnitPrice: mustDecimal(t, "9.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if err := models.DeletePlatform(ctx, db, platform.ID); err != nil {
		t.Fatalf("DeletePlatform: %v", err)
	}

	got, err := models.GetOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.PlatformId != nil {
		t.Fatalf("platform_id = %v, want cleared", *got.PlatformId)
	}
	if _, err := models.GetPlatform(ctx, db, platform.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}

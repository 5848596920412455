package models_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craftflowhq/craftflow_backend/models"
)

// newTestDB opens an isolated in-memory database. MaxOpenConns(1) keeps
// every goroutine on the same connection, which both shares the
// in-memory database and serializes concurrent transactions the way row
// locks do in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestOrg(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()
	ctx := context.Background()
	user, err := models.RegisterUser(ctx, db, &models.NewUser{
		Email:       name + "@test.local",
		Password:    "secret-pw",
		DisplayName: "Owner of " + name,
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	org, err := models.CreateOrganization(ctx, db, user.ID, &models.NewOrganization{Name: name})
	if err != nil {
		t.Fatalf("CreateOrganization: %v", err)
	}
	return org
}

func newTestPart(t *testing.T, db *gorm.DB, orgId, name string, stock int, unitCost string) *models.Part {
	t.Helper()
	cost, err := decimal.NewFromString(unitCost)
	if err != nil {
		t.Fatalf("bad unit cost %q: %v", unitCost, err)
	}
	part, err := models.CreatePart(context.Background(), db, &models.NewPart{
		OrgId:    orgId,
		Name:     name,
		Stock:    stock,
		UnitCost: cost,
		Unit:     "pcs",
	})
	if err != nil {
		t.Fatalf("CreatePart %q: %v", name, err)
	}
	return part
}

func newTestProduct(t *testing.T, db *gorm.DB, orgId, name string, lines []models.NewRecipeLine) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(context.Background(), db, &models.NewProduct{
		OrgId:       orgId,
		Name:        name,
		RecipeLines: lines,
	})
	if err != nil {
		t.Fatalf("CreateProduct %q: %v", name, err)
	}
	return product
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func wantDecimal(t *testing.T, got decimal.Decimal, want string, label string) {
	t.Helper()
	if !got.Equal(mustDecimal(t, want)) {
		t.Fatalf("%s = %s, want %s", label, got.String(), want)
	}
}

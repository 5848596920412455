// seed-admin creates or resets a bootstrap user and a demo organization,
// handy for a fresh install or a dev database.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override the account via SEED_EMAIL / SEED_PASSWORD / SEED_ORG_NAME.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

const (
	defaultEmail    = "admin@example.com"
	defaultPassword = "change-me-now"
	defaultOrgName  = "Demo Workshop"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	db := config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	email := envOr("SEED_EMAIL", defaultEmail)
	password := envOr("SEED_PASSWORD", defaultPassword)
	orgName := envOr("SEED_ORG_NAME", defaultOrgName)

	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := models.RegisterUser(ctx, db, &models.NewUser{
			Email:       email,
			Password:    password,
			DisplayName: "Administrator",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
			os.Exit(1)
		}
		user = *created
		fmt.Printf("Created user %q\n", email)
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	default:
		hashed, err := utils.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
			os.Exit(1)
		}
		if err := db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("password_hash", string(hashed)).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset password: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reset password for %q\n", email)
	}

	orgs, err := models.GetOrganizationsForUser(ctx, db, user.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list organizations: %v\n", err)
		os.Exit(1)
	}
	if len(orgs) > 0 {
		fmt.Printf("User already belongs to %d organization(s); nothing to seed\n", len(orgs))
		return
	}

	org, err := models.CreateOrganization(ctx, db, user.ID, &models.NewOrganization{Name: orgName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create organization: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created organization %q (%s) owned by %q\n", org.Name, org.ID, email)
}

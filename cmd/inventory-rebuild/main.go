// inventory-rebuild audits part stock against the transaction ledger and
// optionally rewrites stock to the ledger sum. Stock should only ever
// drift when rows were edited out of band; the audit names the parts.
//
// Usage:
//
//	go run ./cmd/inventory-rebuild --org-id <uuid>          # report only
//	go run ./cmd/inventory-rebuild --org-id <uuid> --fix    # also repair
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/craftflowhq/craftflow_backend/config"
	"github.com/craftflowhq/craftflow_backend/models"
	"github.com/craftflowhq/craftflow_backend/utils"
)

func main() {
	orgID := flag.String("org-id", "", "Required: organization id (uuid)")
	fix := flag.Bool("fix", false, "Rewrite part stock to the ledger sum")
	flag.Parse()

	if strings.TrimSpace(*orgID) == "" {
		fmt.Fprintln(os.Stderr, "--org-id is required")
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	ctx = utils.SetOrgIdInContext(ctx, *orgID)

	db := config.ConnectDatabaseWithRetry()
	logger := logrus.New()

	drifts, err := models.FindInventoryDrift(ctx, db, *orgID)
	if err != nil {
		logger.Fatalf("drift scan failed: %v", err)
	}

	if len(drifts) == 0 {
		fmt.Println("no drift: every part's stock matches its ledger")
		return
	}

	for _, d := range drifts {
		fmt.Println(d.String())
	}
	fmt.Printf("%d part(s) drifted\n", len(drifts))

	if !*fix {
		fmt.Println("run again with --fix to rewrite stock from the ledger")
		return
	}

	fixed := 0
	for _, d := range drifts {
		ledger := d.LedgerSum.IntPart()
		if err := db.WithContext(ctx).Model(&models.Part{}).
			Where("id = ?", d.PartId).
			Update("stock", ledger).Error; err != nil {
			logger.Errorf("failed to fix part %s: %v", d.PartId, err)
			continue
		}
		fmt.Printf("part %s (%s): stock %d -> %d\n", d.PartId, d.Name, d.Stock, ledger)
		fixed++
	}
	fmt.Printf("fixed %d of %d part(s)\n", fixed, len(drifts))
}

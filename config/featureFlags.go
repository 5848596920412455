package config

import (
	"os"
	"strings"
)

// RestockOnReturn controls whether a returned order puts the sold
// quantity back into product stock. Returns do not touch parts either
// way; part-level reconciliation stays a manual decision.
//
// Set via env:
// - RESTOCK_ON_RETURN=true
func RestockOnReturn() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("RESTOCK_ON_RETURN")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

package models

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

// Business-rule error taxonomy. Handlers map these to HTTP status codes
// with errors.Is; everything else is a server error.
var (
	ErrNotFound              = errors.New("record not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrNoRecipe              = errors.New("no recipe found")
	ErrCrossTenantReference  = errors.New("cross-tenant reference")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrDuplicate             = errors.New("duplicate value")
)

func insufficientPartStock(partName string, have int, required decimal.Decimal) error {
	return fmt.Errorf("%w: part %q has stock %d, requires %s", ErrInsufficientInventory, partName, have, required.String())
}

func insufficientProductQty(productName string, have int, requested int) error {
	return fmt.Errorf("%w: product %q has quantity %d, requested %d", ErrInsufficientInventory, productName, have, requested)
}

// MySQL lock wait timeout / deadlock. Both are safe to retry after the
// implicit rollback the server performs.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateEntry  = 1062
)

func isRetryableTxnError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrLockWaitTimeout || myErr.Number == mysqlErrDeadlock
	}
	return false
}

// translateStoreError maps store-level constraint violations onto the
// taxonomy so callers never leak driver errors to clients.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, myErr.Message)
	}
	return err
}

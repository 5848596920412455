package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies a SELECT ... FOR UPDATE row lock. Only the mysql
// dialect supports it; the sqlite test dialect serializes writers on its
// own, so the clause is skipped there rather than failing the query.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

const txnMaxAttempts = 3

// runInTxnWithRetry wraps fn in a DB transaction and retries a bounded
// number of times on lock wait timeout / deadlock. Business-rule errors
// are never retried.
func runInTxnWithRetry(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txnMaxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !isRetryableTxnError(err) {
			return translateStoreError(err)
		}
	}
	return translateStoreError(err)
}

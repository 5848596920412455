package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductTransaction is the append-only history of product-quantity
// changes. Rows are never updated or deleted; unit_price_for_sale and
// unit_cost_at_sale are snapshots taken at transaction time and are
// never recomputed.
type ProductTransaction struct {
	ID               string          `gorm:"size:36;primary_key" json:"txn_id"`
	OrgId            string          `gorm:"size:36;index;not null" json:"org_id"`
	ProductId        string          `gorm:"size:36;index;not null" json:"product_id"`
	TxnType          ProductTxnType  `gorm:"size:20;index;not null" json:"txn_type"`
	Qty              int             `gorm:"not null" json:"qty"`
	UnitPriceForSale decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price_for_sale"`
	UnitCostAtSale   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost_at_sale"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (t *ProductTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PartTransaction is the append-only history of part-stock changes.
// qty is the magnitude; txn_type implies direction. product_txn_id links
// build consumption back to the product build that caused it and is NULL
// for standalone purchases and losses.
type PartTransaction struct {
	ID                   string          `gorm:"size:36;primary_key" json:"txn_id"`
	OrgId                string          `gorm:"size:36;index;not null" json:"org_id"`
	PartId               string          `gorm:"size:36;index;not null" json:"part_id"`
	TxnType              PartTxnType     `gorm:"size:20;index;not null" json:"txn_type"`
	Qty                  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPriceForPurchase decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price_for_purchase"`
	ProductTxnId         *string         `gorm:"size:36;index;default:null" json:"product_txn_id"`
	Notes                string          `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (t *PartTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func GetProductTransaction(ctx context.Context, db *gorm.DB, txnId string) (*ProductTransaction, error) {
	var txn ProductTransaction
	if err := db.WithContext(ctx).Where("id = ?", txnId).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func GetPartTransactionsByPart(ctx context.Context, db *gorm.DB, partId string, offset, limit int) ([]PartTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var txns []PartTransaction
	err := db.WithContext(ctx).
		Where("part_id = ?", partId).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func GetProductTransactionsByProduct(ctx context.Context, db *gorm.DB, productId string, offset, limit int) ([]ProductTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var txns []ProductTransaction
	err := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// PartLedgerSum computes the signed sum of a part's transactions:
// purchases add, builds and losses subtract. The invariant checked by
// cmd/inventory-rebuild is that this equals the stock delta since the
// part was created.
func PartLedgerSum(ctx context.Context, db *gorm.DB, partId string) (decimal.Decimal, error) {
	var txns []PartTransaction
	if err := db.WithContext(ctx).Where("part_id = ?", partId).Find(&txns).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.Qty.Mul(decimal.NewFromInt(int64(txn.TxnType.SignedDirection()))))
	}
	return sum, nil
}

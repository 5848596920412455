package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewSale struct {
	ProductId string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

// Sale is the read model for a sale transaction. Profit is computed on
// read from the immutable snapshots; it is never stored.
type Sale struct {
	TxnId            string          `json:"txn_id"`
	OrgId            string          `json:"org_id"`
	ProductId        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	UnitPriceForSale decimal.Decimal `json:"unit_price_for_sale"`
	UnitCostAtSale   decimal.Decimal `json:"unit_cost_at_sale"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	Profit           decimal.Decimal `json:"profit"`
	Notes            string          `json:"notes"`
	SaleDate         string          `json:"sale_date"`
}

func saleFromTransaction(txn *ProductTransaction) *Sale {
	qty := decimal.NewFromInt(int64(txn.Qty))
	return &Sale{
		TxnId:            txn.ID,
		OrgId:            txn.OrgId,
		ProductId:        txn.ProductId,
		Quantity:         txn.Qty,
		UnitPriceForSale: txn.UnitPriceForSale,
		UnitCostAtSale:   txn.UnitCostAtSale,
		TotalRevenue:     qty.Mul(txn.UnitPriceForSale),
		Profit:           qty.Mul(txn.UnitPriceForSale.Sub(txn.UnitCostAtSale)),
		Notes:            txn.Notes,
		SaleDate:         txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RecordSale decrements product quantity and snapshots the price and
// the build-time cost into one append-only sale transaction. The cost
// snapshot is product.total_cost as of the sale, NOT re-derived from
// parts: the goods being sold were built at that cost.
func RecordSale(ctx context.Context, db *gorm.DB, input *NewSale) (*Sale, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit_price must not be negative")
	}

	var sale *Sale
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		txn, err := recordSaleTx(ctx, tx, input)
		if err != nil {
			return err
		}
		sale = saleFromTransaction(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// recordSaleTx is the transactional body, shared with order creation so
// a multi-line order stays atomic across all its sales.
func recordSaleTx(ctx context.Context, tx *gorm.DB, input *NewSale) (*ProductTransaction, error) {
	var product Product
	if err := lockForUpdate(tx).Where("id = ?", input.ProductId).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if product.Quantity < input.Quantity {
		return nil, insufficientProductQty(product.Name, product.Quantity, input.Quantity)
	}

	if err := tx.Model(&Product{}).Where("id = ?", product.ID).
		Update("quantity", product.Quantity-input.Quantity).Error; err != nil {
		return nil, err
	}

	txn := ProductTransaction{
		OrgId:            product.OrgId,
		ProductId:        product.ID,
		TxnType:          ProductTxnTypeSale,
		Qty:              input.Quantity,
		UnitPriceForSale: input.UnitPrice,
		UnitCostAtSale:   product.TotalCost,
		Notes:            input.Notes,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func GetSale(ctx context.Context, db *gorm.DB, txnId string) (*Sale, error) {
	var txn ProductTransaction
	err := db.WithContext(ctx).
		Where("id = ? AND txn_type = ?", txnId, ProductTxnTypeSale).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saleFromTransaction(&txn), nil
}

func GetSalesByOrg(ctx context.Context, db *gorm.DB, orgId string, offset, limit int) ([]*Sale, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var txns []ProductTransaction
	err := db.WithContext(ctx).
		Where("org_id = ? AND txn_type = ?", orgId, ProductTxnTypeSale).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	sales := make([]*Sale, 0, len(txns))
	for i := range txns {
		sales = append(sales, saleFromTransaction(&txns[i]))
	}
	return sales, nil
}

func GetSalesByProduct(ctx context.Context, db *gorm.DB, productId string) ([]*Sale, error) {
	var txns []ProductTransaction
	err := db.WithContext(ctx).
		Where("product_id = ? AND txn_type = ?", productId, ProductTxnTypeSale).
		Order("created_at DESC, id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	sales := make([]*Sale, 0, len(txns))
	for i := range txns {
		sales = append(sales, saleFromTransaction(&txns[i]))
	}
	return sales, nil
}

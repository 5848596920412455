package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ProductProfitSummary aggregates sale transactions per product over a
// window. Revenue and cost come from the immutable snapshots on each
// sale, so historical rows are unaffected by later price changes.
type ProductProfitSummary struct {
	ProductId   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
}

type ProfitQuery struct {
	From *time.Time `json:"from" form:"from" time_format:"2006-01-02"`
	To   *time.Time `json:"to" form:"to" time_format:"2006-01-02"`
}

func GetProductProfitSummaries(ctx context.Context, db *gorm.DB, orgId string, query *ProfitQuery) ([]ProductProfitSummary, error) {
	q := db.WithContext(ctx).
		Where("org_id = ? AND txn_type = ?", orgId, ProductTxnTypeSale)
	if query != nil && query.From != nil {
		q = q.Where("created_at >= ?", *query.From)
	}
	if query != nil && query.To != nil {
		q = q.Where("created_at < ?", *query.To)
	}

	var txns []ProductTransaction
	if err := q.Order("created_at").Find(&txns).Error; err != nil {
		return nil, err
	}

	byProduct := map[string]*ProductProfitSummary{}
	productIds := []string{}
	for i := range txns {
		txn := &txns[i]
		summary, ok := byProduct[txn.ProductId]
		if !ok {
			summary = &ProductProfitSummary{ProductId: txn.ProductId}
			byProduct[txn.ProductId] = summary
			productIds = append(productIds, txn.ProductId)
		}
		qty := decimal.NewFromInt(int64(txn.Qty))
		summary.UnitsSold += txn.Qty
		summary.Revenue = summary.Revenue.Add(qty.Mul(txn.UnitPriceForSale))
		summary.Cost = summary.Cost.Add(qty.Mul(txn.UnitCostAtSale))
	}

	names := map[string]string{}
	if len(productIds) > 0 {
		var products []Product
		if err := db.WithContext(ctx).Where("id IN ?", productIds).Find(&products).Error; err != nil {
			return nil, err
		}
		for i := range products {
			names[products[i].ID] = products[i].Name
		}
	}

	summaries := make([]ProductProfitSummary, 0, len(productIds))
	for _, id := range productIds {
		summary := byProduct[id]
		summary.ProductName = names[id]
		summary.Profit = summary.Revenue.Sub(summary.Cost)
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// ExportProfitReport renders the summaries as an XLSX workbook.
func ExportProfitReport(summaries []ProductProfitSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Profit"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Product", "Units Sold", "Revenue", "Cost", "Profit"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, summary := range summaries {
		values := []interface{}{
			summary.ProductName,
			summary.UnitsSold,
			summary.Revenue.InexactFloat64(),
			summary.Cost.InexactFloat64(),
			summary.Profit.InexactFloat64(),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// LowStockAlert flags parts at or below their alert threshold.
type LowStockAlert struct {
	PartId     string `json:"part_id"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	AlertStock int    `json:"alert_stock"`
}

func GetLowStockAlerts(ctx context.Context, db *gorm.DB, orgId string) ([]LowStockAlert, error) {
	var parts []Part
	err := db.WithContext(ctx).
		Where("org_id = ? AND alert_stock > 0 AND stock <= alert_stock", orgId).
		Order("name").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	alerts := make([]LowStockAlert, 0, len(parts))
	for i := range parts {
		alerts = append(alerts, LowStockAlert{
			PartId:     parts[i].ID,
			Name:       parts[i].Name,
			Stock:      parts[i].Stock,
			AlertStock: parts[i].AlertStock,
		})
	}
	return alerts, nil
}

// InventoryDrift reports a part whose ledger no longer explains its
// stored stock. rebuild tooling uses it to spot manual DB edits.
type InventoryDrift struct {
	PartId    string          `json:"part_id"`
	Name      string          `json:"name"`
	Stock     int             `json:"stock"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
}

func (d InventoryDrift) String() string {
	return fmt.Sprintf("part %s (%s): stock=%d ledger=%s", d.PartId, d.Name, d.Stock, d.LedgerSum)
}

// FindInventoryDrift compares each part's stock against the signed sum
// of its transactions. Opening stock is ledgered at creation, so the two
// must match unless someone edited rows out of band.
func FindInventoryDrift(ctx context.Context, db *gorm.DB, orgId string) ([]InventoryDrift, error) {
	var parts []Part
	if err := db.WithContext(ctx).Where("org_id = ?", orgId).Find(&parts).Error; err != nil {
		return nil, err
	}
	var drifts []InventoryDrift
	for i := range parts {
		sum, err := PartLedgerSum(ctx, db, parts[i].ID)
		if err != nil {
			return nil, err
		}
		if !sum.Equal(decimal.NewFromInt(int64(parts[i].Stock))) {
			drifts = append(drifts, InventoryDrift{
				PartId:    parts[i].ID,
				Name:      parts[i].Name,
				Stock:     parts[i].Stock,
				LedgerSum: sum,
			})
		}
	}
	return drifts, nil
}

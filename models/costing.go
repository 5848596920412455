package models

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComputeBuildUnitCost returns the cost to build ONE unit of a product:
// the sum over recipe lines of line.quantity x part.unit_cost. Pure
// computation over the part costs the caller has already loaded, so a
// build prices its consumption from the exact snapshot it locked.
func ComputeBuildUnitCost(lines []RecipeLine, partCosts map[string]decimal.Decimal) (decimal.Decimal, error) {
	unitCost := decimal.Zero
	for _, line := range lines {
		cost, ok := partCosts[line.PartId]
		if !ok {
			return decimal.Zero, fmt.Errorf("missing cost for part %s", line.PartId)
		}
		unitCost = unitCost.Add(line.Quantity.Mul(cost))
	}
	return unitCost, nil
}

// BuildUnitCostForProduct loads the recipe and current part costs and
// prices one unit. A read-only preview of what BuildProduct would charge;
// the build itself re-reads costs under row locks.
func BuildUnitCostForProduct(ctx context.Context, db *gorm.DB, productId string) (decimal.Decimal, []RecipeLine, error) {
	lines, err := GetRecipeLines(ctx, db, productId)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if len(lines) == 0 {
		return decimal.Zero, nil, ErrNoRecipe
	}

	partIds := make([]string, 0, len(lines))
	for _, line := range lines {
		partIds = append(partIds, line.PartId)
	}
	var parts []Part
	if err := db.WithContext(ctx).Where("id IN ?", partIds).Find(&parts).Error; err != nil {
		return decimal.Zero, nil, err
	}
	partCosts := make(map[string]decimal.Decimal, len(parts))
	for i := range parts {
		partCosts[parts[i].ID] = parts[i].UnitCost
	}

	unitCost, err := ComputeBuildUnitCost(lines, partCosts)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return unitCost, lines, nil
}

// FifoCostEstimate is the result of ComputeFifoCost. FifoUnitCost is an
// estimate of what acquiring the requested quantity would cost based on
// recent purchase history; it is a planning figure, not an audited cost.
type FifoCostEstimate struct {
	PartId          string          `json:"part_id"`
	Quantity        int             `json:"quantity"`
	FifoUnitCost    decimal.Decimal `json:"fifo_unit_cost"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	CoveredQty      decimal.Decimal `json:"covered_qty"`
	UncoveredQty    decimal.Decimal `json:"uncovered_qty"`
}

// fifoWalkLimit caps how much purchase history one estimate reads.
const fifoWalkLimit = 200

// ComputeFifoCost estimates the unit cost of acquiring `quantity` more
// of a part by walking its purchase transactions newest-first and
// quantity-weighting their unit prices until the requested amount is
// covered. Any remainder the history cannot cover is valued at the
// part's current average unit_cost, so the estimate never fails.
// Read-only: calling it twice without intervening purchases yields the
// same result.
func ComputeFifoCost(ctx context.Context, db *gorm.DB, partId string, quantity int) (*FifoCostEstimate, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	part, err := GetPart(ctx, db, partId)
	if err != nil {
		return nil, err
	}

	var purchases []PartTransaction
	err = db.WithContext(ctx).
		Where("part_id = ? AND txn_type = ?", partId, PartTxnTypePurchase).
		Order("created_at DESC, id DESC").
		Limit(fifoWalkLimit).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	requested := decimal.NewFromInt(int64(quantity))
	remaining := requested
	weightedTotal := decimal.Zero

	for _, txn := range purchases {
		if !remaining.IsPositive() {
			break
		}
		take := txn.Qty
		if take.GreaterThan(remaining) {
			take = remaining
		}
		weightedTotal = weightedTotal.Add(take.Mul(txn.UnitPriceForPurchase))
		remaining = remaining.Sub(take)
	}

	covered := requested.Sub(remaining)
	if remaining.IsPositive() {
		// History cannot cover the request: fall back to the current
		// average cost for the uncovered remainder.
		weightedTotal = weightedTotal.Add(remaining.Mul(part.UnitCost))
	}

	return &FifoCostEstimate{
		PartId:          part.ID,
		Quantity:        quantity,
		FifoUnitCost:    weightedTotal.Div(requested),
		AverageUnitCost: part.UnitCost,
		CoveredQty:      covered,
		UncoveredQty:    remaining,
	}, nil
}

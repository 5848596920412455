package models

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BuildRequest struct {
	// ProductId comes from the route, not the body.
	ProductId string `json:"-"`
	BuildQty  int    `json:"build_qty" binding:"required,gt=0"`
	Notes     string `json:"notes"`
}

type BuildResult struct {
	TxnId              string          `json:"transaction_id"`
	ProductId          string          `json:"product_id"`
	BuildQty           int             `json:"build_qty"`
	UnitBuildCost      decimal.Decimal `json:"unit_build_cost"`
	NewProductQuantity int             `json:"new_product_quantity"`
}

// BuildProduct consumes parts per the product's recipe and produces
// build_qty units, all inside one DB transaction:
//
//  1. lock the product row
//  2. load the recipe (empty recipe rejects the build)
//  3. lock every referenced part in a deterministic order and verify
//     ALL lines are satisfiable before touching anything
//  4. decrement part stocks and append one PartTransaction per line,
//     all sharing the new build's product_txn_id
//  5. price the build from the part costs read under lock in step 3
//  6. increment product quantity, set total_cost to the blended unit
//     cost, append the build ProductTransaction
//
// Any failure rolls the whole operation back; concurrent builds against
// the same parts serialize on the row locks, so stock can never be
// overdrawn by two builds passing the check simultaneously.
func BuildProduct(ctx context.Context, db *gorm.DB, req *BuildRequest) (*BuildResult, error) {
	if req.BuildQty <= 0 {
		return nil, fmt.Errorf("build_qty must be positive")
	}

	var result BuildResult
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		var product Product
		if err := lockForUpdate(tx).Where("id = ?", req.ProductId).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var lines []RecipeLine
		if err := tx.Where("product_id = ?", product.ID).Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: product %q has no recipe lines", ErrNoRecipe, product.Name)
		}

		// Lock parts in part-id order so concurrent builds that share
		// parts acquire locks in the same order and cannot deadlock.
		sort.Slice(lines, func(i, j int) bool { return lines[i].PartId < lines[j].PartId })

		buildQty := decimal.NewFromInt(int64(req.BuildQty))
		parts := make(map[string]*Part, len(lines))
		required := make(map[string]decimal.Decimal, len(lines))

		for _, line := range lines {
			var part Part
			if err := lockForUpdate(tx).Where("id = ?", line.PartId).First(&part).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: part %s", ErrNotFound, line.PartId)
				}
				return err
			}
			if part.OrgId != product.OrgId {
				return fmt.Errorf("%w: part %s belongs to a different organization", ErrCrossTenantReference, part.ID)
			}
			// Parts are discrete: a fractional requirement consumes the
			// next whole unit, so the ledger sum stays equal to the
			// integer stock delta.
			need := line.Quantity.Mul(buildQty).Ceil()
			if decimal.NewFromInt(int64(part.Stock)).LessThan(need) {
				// Reject the whole build before any write; no partial
				// consumption of the satisfiable lines.
				return insufficientPartStock(part.Name, part.Stock, need)
			}
			parts[line.PartId] = &part
			required[line.PartId] = need
		}

		// Price the build from the costs read under lock above, not
		// re-read after mutation, so one build sees one cost snapshot.
		partCosts := make(map[string]decimal.Decimal, len(parts))
		for id, part := range parts {
			partCosts[id] = part.UnitCost
		}
		unitCost, err := ComputeBuildUnitCost(lines, partCosts)
		if err != nil {
			return err
		}

		productTxn := ProductTransaction{
			OrgId:          product.OrgId,
			ProductId:      product.ID,
			TxnType:        ProductTxnTypeBuildProduct,
			Qty:            req.BuildQty,
			UnitCostAtSale: unitCost,
			Notes:          req.Notes,
		}
		if err := tx.Create(&productTxn).Error; err != nil {
			return err
		}

		for _, line := range lines {
			part := parts[line.PartId]
			need := required[line.PartId]

			newStock := decimal.NewFromInt(int64(part.Stock)).Sub(need)
			if err := tx.Model(&Part{}).Where("id = ?", part.ID).
				Update("stock", newStock.IntPart()).Error; err != nil {
				return err
			}

			partTxn := PartTransaction{
				OrgId:        product.OrgId,
				PartId:       part.ID,
				TxnType:      PartTxnTypeBuildProduct,
				Qty:          need,
				ProductTxnId: &productTxn.ID,
			}
			if err := tx.Create(&partTxn).Error; err != nil {
				return err
			}
		}

		newQty := product.Quantity + req.BuildQty
		if err := tx.Model(&Product{}).Where("id = ?", product.ID).
			Updates(map[string]interface{}{"quantity": newQty, "total_cost": unitCost}).Error; err != nil {
			return err
		}

		result = BuildResult{
			TxnId:              productTxn.ID,
			ProductId:          product.ID,
			BuildQty:           req.BuildQty,
			UnitBuildCost:      unitCost,
			NewProductQuantity: newQty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

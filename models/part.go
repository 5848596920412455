package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/craftflowhq/craftflow_backend/utils"
)

// Part is a raw material. stock and unit_cost are derived facts: they
// change only through AdjustPartStock and BuildProduct, never through
// UpdatePart. PartUpdate deliberately has no fields for them.
type Part struct {
	ID         string          `gorm:"size:36;primary_key" json:"part_id"`
	OrgId      string          `gorm:"size:36;index:idx_parts_org_name,unique,priority:1;not null" json:"org_id" binding:"required"`
	Name       string          `gorm:"size:255;index:idx_parts_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	Stock      int             `gorm:"not null;default:0" json:"stock"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unit_cost"`
	Unit       string          `gorm:"size:50" json:"unit"`
	SubtypeId  *string         `gorm:"size:36;index;default:null" json:"subtype_id"`
	Specs      string          `gorm:"type:text" json:"specs"`
	Color      string          `gorm:"size:100" json:"color"`
	AlertStock int             `gorm:"not null;default:0" json:"alert_stock"`
	ImageURL   string          `gorm:"size:512" json:"image_url"`
	Status     []string        `gorm:"serializer:json" json:"status"`
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Part) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type NewPart struct {
	// OrgId comes from the route, not the body.
	OrgId      string          `json:"-"`
	Name       string          `json:"name" binding:"required"`
	Stock      int             `json:"stock" binding:"gte=0"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Unit       string          `json:"unit"`
	SubtypeId  *string         `json:"subtype_id"`
	Specs      string          `json:"specs"`
	Color      string          `json:"color"`
	AlertStock int             `json:"alert_stock" binding:"gte=0"`
	Status     []string        `json:"status"`
	Notes      string          `json:"notes"`
}

// PartUpdate lists the user-editable fields only. stock and unit_cost
// are absent on purpose; the coordinator owns them.
type PartUpdate struct {
	Name       *string   `json:"name"`
	Unit       *string   `json:"unit"`
	SubtypeId  *string   `json:"subtype_id"`
	Specs      *string   `json:"specs"`
	Color      *string   `json:"color"`
	AlertStock *int      `json:"alert_stock" binding:"omitempty,gte=0"`
	Status     *[]string `json:"status"`
	Notes      *string   `json:"notes"`
}

func CreatePart(ctx context.Context, db *gorm.DB, input *NewPart) (*Part, error) {
	if input.UnitCost.IsNegative() {
		return nil, fmt.Errorf("unit_cost must not be negative")
	}
	if input.SubtypeId != nil {
		if err := utils.ValidateResourceId[PartSubtype](ctx, db, "", *input.SubtypeId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return nil, fmt.Errorf("%w: part subtype %s", ErrNotFound, *input.SubtypeId)
			}
			return nil, err
		}
	}
	part := Part{
		OrgId:      input.OrgId,
		Name:       input.Name,
		Stock:      input.Stock,
		UnitCost:   input.UnitCost,
		Unit:       input.Unit,
		SubtypeId:  input.SubtypeId,
		Specs:      input.Specs,
		Color:      input.Color,
		AlertStock: input.AlertStock,
		Status:     input.Status,
		Notes:      input.Notes,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&part).Error; err != nil {
			return err
		}
		// Opening stock goes through the ledger too, so the signed
		// transaction sum always equals the stored stock.
		if part.Stock > 0 {
			opening := PartTransaction{
				OrgId:                part.OrgId,
				PartId:               part.ID,
				TxnType:              PartTxnTypePurchase,
				Qty:                  decimal.NewFromInt(int64(part.Stock)),
				UnitPriceForPurchase: part.UnitCost,
				Notes:                "opening stock",
			}
			if err := tx.Create(&opening).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &part, nil
}

func GetPart(ctx context.Context, db *gorm.DB, partId string) (*Part, error) {
	var part Part
	if err := db.WithContext(ctx).Where("id = ?", partId).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

func GetPartsByOrg(ctx context.Context, db *gorm.DB, orgId string, offset, limit int) ([]Part, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var parts []Part
	err := db.WithContext(ctx).
		Where("org_id = ?", orgId).
		Order("name").
		Offset(offset).Limit(limit).
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func UpdatePart(ctx context.Context, db *gorm.DB, partId string, input *PartUpdate) (*Part, error) {
	part, err := GetPart(ctx, db, partId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != part.Name {
		if err := utils.ValidateUnique[Part](ctx, db, part.OrgId, "name", *input.Name, part.ID); err != nil {
			if errors.Is(err, utils.ErrorDuplicate) {
				return nil, fmt.Errorf("%w: part name %q", ErrDuplicate, *input.Name)
			}
			return nil, err
		}
		updates["name"] = *input.Name
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.SubtypeId != nil {
		updates["subtype_id"] = *input.SubtypeId
	}
	if input.Specs != nil {
		updates["specs"] = *input.Specs
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.AlertStock != nil {
		updates["alert_stock"] = *input.AlertStock
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(part).Updates(updates).Error; err != nil {
			return nil, translateStoreError(err)
		}
	}
	if input.Status != nil {
		part.Status = *input.Status
		if err := db.WithContext(ctx).Model(part).Update("status", part.Status).Error; err != nil {
			return nil, err
		}
	}
	return GetPart(ctx, db, partId)
}

// DeletePart removes a part unless a recipe still references it.
func DeletePart(ctx context.Context, db *gorm.DB, partId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part Part
		if err := tx.Where("id = ?", partId).First(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var refs int64
		if err := tx.Model(&RecipeLine{}).Where("part_id = ?", partId).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: part is referenced by %d recipe line(s)", ErrDuplicate, refs)
		}
		return tx.Delete(&part).Error
	})
}

// PartAdjustment is the input to AdjustPartStock.
// For purchases Cost is mandatory and CostType says whether it is a
// per-unit price or the total paid for Qty units.
type PartAdjustment struct {
	TxnType  PartTxnType      `json:"txn_type" binding:"required"`
	Qty      int              `json:"qty" binding:"required,gt=0"`
	Cost     *decimal.Decimal `json:"cost"`
	CostType CostType         `json:"cost_type"`
	Notes    string           `json:"notes"`
}

// PartAdjustmentResult reports the post-commit state.
type PartAdjustmentResult struct {
	TxnId       string          `json:"txn_id"`
	PartId      string          `json:"part_id"`
	NewStock    int             `json:"new_stock"`
	NewUnitCost decimal.Decimal `json:"new_unit_cost"`
}

// AdjustPartStock applies a purchase or loss to a part inside one DB
// transaction. Purchases re-average unit_cost across the old stock and
// the incoming units; losses leave valuation untouched.
func AdjustPartStock(ctx context.Context, db *gorm.DB, partId string, input *PartAdjustment) (*PartAdjustmentResult, error) {
	if input.TxnType != PartTxnTypePurchase && input.TxnType != PartTxnTypeLoss {
		return nil, fmt.Errorf("txn_type must be purchase or loss")
	}
	if input.Qty <= 0 {
		return nil, fmt.Errorf("qty must be positive")
	}
	if input.TxnType == PartTxnTypePurchase {
		if input.Cost == nil || input.Cost.IsNegative() {
			return nil, fmt.Errorf("purchase requires a non-negative cost")
		}
		if input.CostType == "" {
			input.CostType = CostTypePerUnit
		}
		if !input.CostType.Valid() {
			return nil, fmt.Errorf("cost_type must be per_unit or total")
		}
	}

	var result PartAdjustmentResult
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		var part Part
		if err := lockForUpdate(tx).Where("id = ?", partId).First(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		qty := decimal.NewFromInt(int64(input.Qty))
		var unitPrice decimal.Decimal

		switch input.TxnType {
		case PartTxnTypePurchase:
			unitPrice = *input.Cost
			if input.CostType == CostTypeTotal {
				unitPrice = input.Cost.Div(qty)
			}
			oldStock := decimal.NewFromInt(int64(part.Stock))
			newStock := part.Stock + input.Qty
			if part.Stock == 0 {
				part.UnitCost = unitPrice
			} else {
				// Weighted average of existing stock at the old cost and
				// the incoming units at the purchase cost.
				total := oldStock.Mul(part.UnitCost).Add(qty.Mul(unitPrice))
				part.UnitCost = total.Div(decimal.NewFromInt(int64(newStock)))
			}
			part.Stock = newStock

		case PartTxnTypeLoss:
			if part.Stock-input.Qty < 0 {
				return insufficientPartStock(part.Name, part.Stock, qty)
			}
			part.Stock -= input.Qty
			// unit_cost unchanged: a loss does not affect valuation.
		}

		if err := tx.Model(&Part{}).Where("id = ?", part.ID).
			Updates(map[string]interface{}{"stock": part.Stock, "unit_cost": part.UnitCost}).Error; err != nil {
			return err
		}

		txn := PartTransaction{
			OrgId:                part.OrgId,
			PartId:               part.ID,
			TxnType:              input.TxnType,
			Qty:                  qty,
			UnitPriceForPurchase: unitPrice,
			Notes:                input.Notes,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result = PartAdjustmentResult{
			TxnId:       txn.ID,
			PartId:      part.ID,
			NewStock:    part.Stock,
			NewUnitCost: part.UnitCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetPartImageURL is used by the upload handlers only.
func SetPartImageURL(ctx context.Context, db *gorm.DB, partId string, imageURL string) error {
	res := db.WithContext(ctx).Model(&Part{}).Where("id = ?", partId).Update("image_url", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

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

// Product is a sellable assembled item. quantity and total_cost are
// derived facts owned by the coordinator: total_cost is the blended
// per-unit cost of the most recent build, quantity changes only through
// builds, adjustments and sales.
type Product struct {
	ID               string          `gorm:"size:36;primary_key" json:"product_id"`
	OrgId            string          `gorm:"size:36;index:idx_products_org_name,unique,priority:1;not null" json:"org_id" binding:"required"`
	Name             string          `gorm:"size:255;index:idx_products_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	Description      string          `gorm:"type:text" json:"description"`
	PrimaryColor     string          `gorm:"size:100" json:"primary_color"`
	SecondaryColor   string          `gorm:"size:100" json:"secondary_color"`
	ProductSubtypeId *string         `gorm:"size:36;index;default:null" json:"product_subtype_id"`
	Status           []string        `gorm:"serializer:json" json:"status"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	IsSelfMade       bool            `gorm:"not null;default:false" json:"is_self_made"`
	Difficulty       Difficulty      `gorm:"size:20;not null;default:NA" json:"difficulty"`
	Quantity         int             `gorm:"not null;default:0" json:"quantity"`
	AlertQuantity    int             `gorm:"not null;default:0" json:"alert_quantity"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_cost"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_price"`
	ImageURL         string          `gorm:"size:512" json:"image_url"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Difficulty == "" {
		p.Difficulty = DifficultyNA
	}
	return nil
}

type NewProduct struct {
	// OrgId comes from the route, not the body.
	OrgId            string          `json:"-"`
	Name             string          `json:"name" binding:"required"`
	Description      string          `json:"description"`
	PrimaryColor     string          `json:"primary_color"`
	SecondaryColor   string          `json:"secondary_color"`
	ProductSubtypeId *string         `json:"product_subtype_id"`
	Status           []string        `json:"status"`
	IsActive         *bool           `json:"is_active"`
	IsSelfMade       bool            `json:"is_self_made"`
	Difficulty       Difficulty      `json:"difficulty"`
	Quantity         int             `json:"quantity" binding:"gte=0"`
	AlertQuantity    int             `json:"alert_quantity" binding:"gte=0"`
	BasePrice        decimal.Decimal `json:"base_price"`
	Notes            string          `json:"notes"`
	RecipeLines      []NewRecipeLine `json:"recipe_lines"`
}

// ProductUpdate lists the user-editable fields only. quantity and
// total_cost are absent on purpose; the coordinator owns them.
// RecipeLines, when present, is applied as a bulk upsert.
type ProductUpdate struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	PrimaryColor     *string          `json:"primary_color"`
	SecondaryColor   *string          `json:"secondary_color"`
	ProductSubtypeId *string          `json:"product_subtype_id"`
	Status           *[]string        `json:"status"`
	IsActive         *bool            `json:"is_active"`
	IsSelfMade       *bool            `json:"is_self_made"`
	Difficulty       *Difficulty      `json:"difficulty"`
	AlertQuantity    *int             `json:"alert_quantity" binding:"omitempty,gte=0"`
	BasePrice        *decimal.Decimal `json:"base_price"`
	Notes            *string          `json:"notes"`
	RecipeLines      []NewRecipeLine  `json:"recipe_lines"`
}

// CreateProduct creates the product and its optional inline recipe in
// one transaction. Recipe parts must belong to the same organization.
func CreateProduct(ctx context.Context, db *gorm.DB, input *NewProduct) (*Product, error) {
	if input.Difficulty != "" && !input.Difficulty.Valid() {
		return nil, fmt.Errorf("difficulty must be one of easy, medium, difficult, NA")
	}
	if input.ProductSubtypeId != nil {
		if err := utils.ValidateResourceId[ProductSubtype](ctx, db, "", *input.ProductSubtypeId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return nil, fmt.Errorf("%w: product subtype %s", ErrNotFound, *input.ProductSubtypeId)
			}
			return nil, err
		}
	}
	product := Product{
		OrgId:            input.OrgId,
		Name:             input.Name,
		Description:      input.Description,
		PrimaryColor:     input.PrimaryColor,
		SecondaryColor:   input.SecondaryColor,
		ProductSubtypeId: input.ProductSubtypeId,
		Status:           input.Status,
		IsActive:         true,
		IsSelfMade:       input.IsSelfMade,
		Difficulty:       input.Difficulty,
		Quantity:         input.Quantity,
		AlertQuantity:    input.AlertQuantity,
		BasePrice:        input.BasePrice,
		Notes:            input.Notes,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, line := range input.RecipeLines {
			if _, err := createRecipeLineTx(ctx, tx, product.OrgId, product.ID, &line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &product, nil
}

func GetProduct(ctx context.Context, db *gorm.DB, productId string) (*Product, error) {
	var product Product
	if err := db.WithContext(ctx).Where("id = ?", productId).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func GetProductsByOrg(ctx context.Context, db *gorm.DB, orgId string, offset, limit int) ([]Product, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var products []Product
	err := db.WithContext(ctx).
		Where("org_id = ?", orgId).
		Order("name").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct applies the user-editable fields; when RecipeLines is
// non-nil it also bulk-upserts the recipe in the same transaction.
func UpdateProduct(ctx context.Context, db *gorm.DB, productId string, input *ProductUpdate) (*Product, error) {
	if input.Difficulty != nil && !input.Difficulty.Valid() {
		return nil, fmt.Errorf("difficulty must be one of easy, medium, difficult, NA")
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Where("id = ?", productId).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if input.Name != nil && *input.Name != product.Name {
			if err := utils.ValidateUnique[Product](ctx, tx, product.OrgId, "name", *input.Name, product.ID); err != nil {
				if errors.Is(err, utils.ErrorDuplicate) {
					return fmt.Errorf("%w: product name %q", ErrDuplicate, *input.Name)
				}
				return err
			}
			updates["name"] = *input.Name
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.PrimaryColor != nil {
			updates["primary_color"] = *input.PrimaryColor
		}
		if input.SecondaryColor != nil {
			updates["secondary_color"] = *input.SecondaryColor
		}
		if input.ProductSubtypeId != nil {
			updates["product_subtype_id"] = *input.ProductSubtypeId
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if input.IsSelfMade != nil {
			updates["is_self_made"] = *input.IsSelfMade
		}
		if input.Difficulty != nil {
			updates["difficulty"] = *input.Difficulty
		}
		if input.AlertQuantity != nil {
			updates["alert_quantity"] = *input.AlertQuantity
		}
		if input.BasePrice != nil {
			updates["base_price"] = *input.BasePrice
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Status != nil {
			if err := tx.Model(&product).Update("status", *input.Status).Error; err != nil {
				return err
			}
		}
		if input.RecipeLines != nil {
			if err := bulkUpsertRecipeLinesTx(ctx, tx, product.OrgId, product.ID, input.RecipeLines); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return GetProduct(ctx, db, productId)
}

// DeleteProduct cascades the recipe (lines are owned by the product).
func DeleteProduct(ctx context.Context, db *gorm.DB, productId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Where("id = ?", productId).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("product_id = ?", productId).Delete(&RecipeLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}

// ProductAdjustment is the input to AdjustProductQuantity. adjustment
// treats Qty as signed (both directions); loss always decreases.
type ProductAdjustment struct {
	TxnType ProductTxnType `json:"txn_type" binding:"required"`
	Qty     int            `json:"qty" binding:"required"`
	Notes   string         `json:"notes"`
}

type ProductAdjustmentResult struct {
	TxnId       string `json:"txn_id"`
	ProductId   string `json:"product_id"`
	NewQuantity int    `json:"new_quantity"`
}

// AdjustProductQuantity applies a manual adjustment or loss to finished
// product stock inside one DB transaction.
func AdjustProductQuantity(ctx context.Context, db *gorm.DB, productId string, input *ProductAdjustment) (*ProductAdjustmentResult, error) {
	if input.TxnType != ProductTxnTypeAdjustment && input.TxnType != ProductTxnTypeLoss {
		return nil, fmt.Errorf("txn_type must be adjustment or loss")
	}
	if input.Qty == 0 {
		return nil, fmt.Errorf("qty must not be zero")
	}
	if input.TxnType == ProductTxnTypeLoss && input.Qty < 0 {
		return nil, fmt.Errorf("loss qty must be positive")
	}

	var result ProductAdjustmentResult
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		var product Product
		if err := lockForUpdate(tx).Where("id = ?", productId).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		delta := input.Qty
		if input.TxnType == ProductTxnTypeLoss {
			delta = -input.Qty
		}
		newQty := product.Quantity + delta
		if newQty < 0 {
			return insufficientProductQty(product.Name, product.Quantity, -delta)
		}

		if err := tx.Model(&Product{}).Where("id = ?", product.ID).
			Update("quantity", newQty).Error; err != nil {
			return err
		}

		magnitude := delta
		if magnitude < 0 {
			magnitude = -magnitude
		}
		notes := input.Notes
		if input.TxnType == ProductTxnTypeAdjustment && delta < 0 {
			// The ledger stores magnitudes; keep the direction visible.
			notes = appendNote(notes, "decrease")
		}
		txn := ProductTransaction{
			OrgId:     product.OrgId,
			ProductId: product.ID,
			TxnType:   input.TxnType,
			Qty:       magnitude,
			Notes:     notes,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result = ProductAdjustmentResult{
			TxnId:       txn.ID,
			ProductId:   product.ID,
			NewQuantity: newQty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func appendNote(notes, marker string) string {
	if notes == "" {
		return marker
	}
	return notes + "; " + marker
}

// SetProductImageURL is used by the upload handlers only.
func SetProductImageURL(ctx context.Context, db *gorm.DB, productId string, imageURL string) error {
	res := db.WithContext(ctx).Model(&Product{}).Where("id = ?", productId).Update("image_url", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeLine is one bill-of-materials entry: the amount of a part
// consumed per unit of product built. Identity is (product_id, part_id).
type RecipeLine struct {
	ProductId string          `gorm:"size:36;primary_key" json:"product_id"`
	PartId    string          `gorm:"size:36;primary_key" json:"part_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"`
	Unit      string          `gorm:"size:50" json:"unit"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRecipeLine struct {
	PartId   string          `json:"part_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Unit     string          `json:"unit"`
}

type RecipeLineUpdate struct {
	Quantity *decimal.Decimal `json:"quantity"`
	Unit     *string          `json:"unit"`
}

// validateRecipePart confirms the part exists and shares the product's
// organization. The same-tenant rule is the recipe manager's core guard.
func validateRecipePart(ctx context.Context, tx *gorm.DB, orgId string, partId string) (*Part, error) {
	var part Part
	if err := tx.WithContext(ctx).Where("id = ?", partId).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: part %s", ErrNotFound, partId)
		}
		return nil, err
	}
	if part.OrgId != orgId {
		return nil, fmt.Errorf("%w: part %s belongs to a different organization", ErrCrossTenantReference, partId)
	}
	return &part, nil
}

func createRecipeLineTx(ctx context.Context, tx *gorm.DB, orgId string, productId string, input *NewRecipeLine) (*RecipeLine, error) {
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("recipe quantity must be positive")
	}
	if _, err := validateRecipePart(ctx, tx, orgId, input.PartId); err != nil {
		return nil, err
	}

	var existing int64
	if err := tx.Model(&RecipeLine{}).
		Where("product_id = ? AND part_id = ?", productId, input.PartId).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: recipe line already exists for this product and part", ErrDuplicate)
	}

	line := RecipeLine{
		ProductId: productId,
		PartId:    input.PartId,
		Quantity:  input.Quantity,
		Unit:      input.Unit,
	}
	if err := tx.Create(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// CreateRecipeLine adds one line to a product's recipe.
func CreateRecipeLine(ctx context.Context, db *gorm.DB, productId string, input *NewRecipeLine) (*RecipeLine, error) {
	var line *RecipeLine
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := getProductTx(ctx, tx, productId)
		if err != nil {
			return err
		}
		line, err = createRecipeLineTx(ctx, tx, product.OrgId, productId, input)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return line, nil
}

func getProductTx(ctx context.Context, tx *gorm.DB, productId string) (*Product, error) {
	var product Product
	if err := tx.WithContext(ctx).Where("id = ?", productId).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func GetRecipeLines(ctx context.Context, db *gorm.DB, productId string) ([]RecipeLine, error) {
	if _, err := GetProduct(ctx, db, productId); err != nil {
		return nil, err
	}
	var lines []RecipeLine
	err := db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("part_id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateRecipeLine changes the quantity (and unit) of one line.
func UpdateRecipeLine(ctx context.Context, db *gorm.DB, productId string, partId string, input *RecipeLineUpdate) (*RecipeLine, error) {
	if input.Quantity != nil && !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("recipe quantity must be positive")
	}
	var line RecipeLine
	err := db.WithContext(ctx).
		Where("product_id = ? AND part_id = ?", productId, partId).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if len(updates) > 0 {
		err = db.WithContext(ctx).Model(&RecipeLine{}).
			Where("product_id = ? AND part_id = ?", productId, partId).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	err = db.WithContext(ctx).
		Where("product_id = ? AND part_id = ?", productId, partId).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func DeleteRecipeLine(ctx context.Context, db *gorm.DB, productId string, partId string) error {
	res := db.WithContext(ctx).
		Where("product_id = ? AND part_id = ?", productId, partId).
		Delete(&RecipeLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllRecipeLines is the explicit "clear the recipe" call that
// callers combine with BulkUpsertRecipeLines for full replacement.
func DeleteAllRecipeLines(ctx context.Context, db *gorm.DB, productId string) error {
	if _, err := GetProduct(ctx, db, productId); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("product_id = ?", productId).
		Delete(&RecipeLine{}).Error
}

func bulkUpsertRecipeLinesTx(ctx context.Context, tx *gorm.DB, orgId string, productId string, inputs []NewRecipeLine) error {
	for _, input := range inputs {
		if !input.Quantity.IsPositive() {
			return fmt.Errorf("recipe quantity must be positive")
		}
		if _, err := validateRecipePart(ctx, tx, orgId, input.PartId); err != nil {
			return err
		}

		var line RecipeLine
		err := tx.Where("product_id = ? AND part_id = ?", productId, input.PartId).First(&line).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{"quantity": input.Quantity}
			if input.Unit != "" {
				updates["unit"] = input.Unit
			}
			if err := tx.Model(&RecipeLine{}).
				Where("product_id = ? AND part_id = ?", productId, input.PartId).
				Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = RecipeLine{
				ProductId: productId,
				PartId:    input.PartId,
				Quantity:  input.Quantity,
				Unit:      input.Unit,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

// BulkUpsertRecipeLines upserts by (product_id, part_id): matching lines
// are updated in place, new lines are inserted, and lines absent from
// the input are left untouched. Full replacement requires an explicit
// DeleteAllRecipeLines first; "set exactly these" is never implied.
func BulkUpsertRecipeLines(ctx context.Context, db *gorm.DB, productId string, inputs []NewRecipeLine) ([]RecipeLine, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := getProductTx(ctx, tx, productId)
		if err != nil {
			return err
		}
		return bulkUpsertRecipeLinesTx(ctx, tx, product.OrgId, productId, inputs)
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return GetRecipeLines(ctx, db, productId)
}

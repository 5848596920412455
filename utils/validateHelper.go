package utils

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ProcessValidationErrors flattens binding failures into a field -> rule
// map for the response body. Non-validator errors get no field detail.
func ProcessValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	errorResponse := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}

// ValidateResourceId checks that an id exists within the organization.
// org_id can be blank for unscoped lookups (internal ops).
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, orgId string, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, db, orgId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// ValidateUnique rejects a duplicate value for column within the org,
// optionally excluding one row (for updates).
func ValidateUnique[T any](ctx context.Context, db *gorm.DB, orgId string, column string, value interface{}, exceptId string) error {
	var count int64
	var err error
	if exceptId == "" {
		count, err = ResourceCountWhere[T](ctx, db, orgId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, orgId, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrorDuplicate
	}
	return nil
}

// ResourceCountWhere counts records, using WHERE org_id = ? AND $condition.
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, orgId string, condition string, value ...interface{}) (int64, error) {
	var model T

	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if orgId != "" {
		dbCtx.Where("org_id = ?", orgId)
	}
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

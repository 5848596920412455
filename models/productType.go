package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductType struct {
	ID        string           `gorm:"size:36;primary_key" json:"product_type_id"`
	OrgId     string           `gorm:"size:36;index:idx_product_types_org_name,unique,priority:1;not null" json:"org_id"`
	Name      string           `gorm:"size:255;index:idx_product_types_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	Subtypes  []ProductSubtype `gorm:"foreignKey:ProductTypeId" json:"subtypes"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (t *ProductType) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type ProductSubtype struct {
	ID            string    `gorm:"size:36;primary_key" json:"product_subtype_id"`
	ProductTypeId string    `gorm:"size:36;index:idx_product_subtypes_type_name,unique,priority:1;not null" json:"product_type_id"`
	Name          string    `gorm:"size:255;index:idx_product_subtypes_type_name,unique,priority:2;not null" json:"name" binding:"required"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *ProductSubtype) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func CreateProductType(ctx context.Context, db *gorm.DB, orgId, name string) (*ProductType, error) {
	productType := ProductType{OrgId: orgId, Name: name}
	if err := db.WithContext(ctx).Create(&productType).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &productType, nil
}

func GetProductTypesByOrg(ctx context.Context, db *gorm.DB, orgId string) ([]ProductType, error) {
	var types []ProductType
	err := db.WithContext(ctx).
		Preload("Subtypes").
		Where("org_id = ?", orgId).
		Order("name").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func RenameProductType(ctx context.Context, db *gorm.DB, typeId, name string) (*ProductType, error) {
	res := db.WithContext(ctx).Model(&ProductType{}).Where("id = ?", typeId).Update("name", name)
	if res.Error != nil {
		return nil, translateStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var productType ProductType
	if err := db.WithContext(ctx).Preload("Subtypes").Where("id = ?", typeId).First(&productType).Error; err != nil {
		return nil, err
	}
	return &productType, nil
}

func DeleteProductType(ctx context.Context, db *gorm.DB, typeId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtypeIds []string
		if err := tx.Model(&ProductSubtype{}).Where("product_type_id = ?", typeId).
			Pluck("id", &subtypeIds).Error; err != nil {
			return err
		}
		if len(subtypeIds) > 0 {
			if err := tx.Model(&Product{}).Where("product_subtype_id IN ?", subtypeIds).
				Update("product_subtype_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("product_type_id = ?", typeId).Delete(&ProductSubtype{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", typeId).Delete(&ProductType{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func CreateProductSubtype(ctx context.Context, db *gorm.DB, typeId, name string) (*ProductSubtype, error) {
	var productType ProductType
	if err := db.WithContext(ctx).Where("id = ?", typeId).First(&productType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	subtype := ProductSubtype{ProductTypeId: typeId, Name: name}
	if err := db.WithContext(ctx).Create(&subtype).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &subtype, nil
}

func DeleteProductSubtype(ctx context.Context, db *gorm.DB, subtypeId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Product{}).Where("product_subtype_id = ?", subtypeId).
			Update("product_subtype_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", subtypeId).Delete(&ProductSubtype{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

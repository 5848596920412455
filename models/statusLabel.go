package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status labels are free-form tag catalogs. Parts and products store
// their tags inline as JSON; the catalogs only drive pickers, so a
// deleted label never touches existing rows.
type PartStatusLabel struct {
	ID        string    `gorm:"size:36;primary_key" json:"part_status_label_id"`
	OrgId     string    `gorm:"size:36;index:idx_part_status_org_name,unique,priority:1;not null" json:"org_id"`
	Name      string    `gorm:"size:100;index:idx_part_status_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *PartStatusLabel) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type ProductStatusLabel struct {
	ID        string    `gorm:"size:36;primary_key" json:"product_status_label_id"`
	OrgId     string    `gorm:"size:36;index:idx_product_status_org_name,unique,priority:1;not null" json:"org_id"`
	Name      string    `gorm:"size:100;index:idx_product_status_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *ProductStatusLabel) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func CreatePartStatusLabel(ctx context.Context, db *gorm.DB, orgId, name string) (*PartStatusLabel, error) {
	label := PartStatusLabel{OrgId: orgId, Name: name}
	if err := db.WithContext(ctx).Create(&label).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &label, nil
}

func GetPartStatusLabels(ctx context.Context, db *gorm.DB, orgId string) ([]PartStatusLabel, error) {
	var labels []PartStatusLabel
	err := db.WithContext(ctx).Where("org_id = ?", orgId).Order("name").Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func DeletePartStatusLabel(ctx context.Context, db *gorm.DB, labelId string) error {
	res := db.WithContext(ctx).Where("id = ?", labelId).Delete(&PartStatusLabel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func CreateProductStatusLabel(ctx context.Context, db *gorm.DB, orgId, name string) (*ProductStatusLabel, error) {
	label := ProductStatusLabel{OrgId: orgId, Name: name}
	if err := db.WithContext(ctx).Create(&label).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &label, nil
}

func GetProductStatusLabels(ctx context.Context, db *gorm.DB, orgId string) ([]ProductStatusLabel, error) {
	var labels []ProductStatusLabel
	err := db.WithContext(ctx).Where("org_id = ?", orgId).Order("name").Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func DeleteProductStatusLabel(ctx context.Context, db *gorm.DB, labelId string) error {
	res := db.WithContext(ctx).Where("id = ?", labelId).Delete(&ProductStatusLabel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

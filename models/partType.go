package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartType struct {
	ID        string        `gorm:"size:36;primary_key" json:"part_type_id"`
	OrgId     string        `gorm:"size:36;index:idx_part_types_org_name,unique,priority:1;not null" json:"org_id"`
	Name      string        `gorm:"size:255;index:idx_part_types_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	Subtypes  []PartSubtype `gorm:"foreignKey:PartTypeId" json:"subtypes"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (t *PartType) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type PartSubtype struct {
	ID         string    `gorm:"size:36;primary_key" json:"part_subtype_id"`
	PartTypeId string    `gorm:"size:36;index:idx_part_subtypes_type_name,unique,priority:1;not null" json:"part_type_id"`
	Name       string    `gorm:"size:255;index:idx_part_subtypes_type_name,unique,priority:2;not null" json:"name" binding:"required"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *PartSubtype) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func CreatePartType(ctx context.Context, db *gorm.DB, orgId, name string) (*PartType, error) {
	partType := PartType{OrgId: orgId, Name: name}
	if err := db.WithContext(ctx).Create(&partType).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &partType, nil
}

func GetPartTypesByOrg(ctx context.Context, db *gorm.DB, orgId string) ([]PartType, error) {
	var types []PartType
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

func RenamePartType(ctx context.Context, db *gorm.DB, typeId, name string) (*PartType, error) {
	res := db.WithContext(ctx).Model(&PartType{}).Where("id = ?", typeId).Update("name", name)
	if res.Error != nil {
		return nil, translateStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var partType PartType
	if err := db.WithContext(ctx).Preload("Subtypes").Where("id = ?", typeId).First(&partType).Error; err != nil {
		return nil, err
	}
	return &partType, nil
}

// DeletePartType removes the type and its subtypes. Parts keep their
// subtype_id dangling-free: references are cleared first.
func DeletePartType(ctx context.Context, db *gorm.DB, typeId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtypeIds []string
		if err := tx.Model(&PartSubtype{}).Where("part_type_id = ?", typeId).
			Pluck("id", &subtypeIds).Error; err != nil {
			return err
		}
		if len(subtypeIds) > 0 {
			if err := tx.Model(&Part{}).Where("subtype_id IN ?", subtypeIds).
				Update("subtype_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("part_type_id = ?", typeId).Delete(&PartSubtype{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", typeId).Delete(&PartType{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func CreatePartSubtype(ctx context.Context, db *gorm.DB, typeId, name string) (*PartSubtype, error) {
	var partType PartType
	if err := db.WithContext(ctx).Where("id = ?", typeId).First(&partType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	subtype := PartSubtype{PartTypeId: typeId, Name: name}
	if err := db.WithContext(ctx).Create(&subtype).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &subtype, nil
}

func DeletePartSubtype(ctx context.Context, db *gorm.DB, subtypeId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Part{}).Where("subtype_id = ?", subtypeId).
			Update("subtype_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", subtypeId).Delete(&PartSubtype{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

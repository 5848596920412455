package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform is a sales channel (a marketplace, a fair booth, a shopfront).
type Platform struct {
	ID        string    `gorm:"size:36;primary_key" json:"platform_id"`
	OrgId     string    `gorm:"size:36;index:idx_platforms_org_name,unique,priority:1;not null" json:"org_id"`
	Name      string    `gorm:"size:255;index:idx_platforms_org_name,unique,priority:2;not null" json:"name" binding:"required"`
	URL       string    `gorm:"size:512" json:"url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Platform) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type NewPlatform struct {
	// OrgId comes from the route, not the body.
	OrgId string `json:"-"`
	Name  string `json:"name" binding:"required"`
	URL   string `json:"url"`
}

func CreatePlatform(ctx context.Context, db *gorm.DB, input *NewPlatform) (*Platform, error) {
	platform := Platform{OrgId: input.OrgId, Name: input.Name, URL: input.URL}
	if err := db.WithContext(ctx).Create(&platform).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &platform, nil
}

func GetPlatform(ctx context.Context, db *gorm.DB, platformId string) (*Platform, error) {
	var platform Platform
	if err := db.WithContext(ctx).Where("id = ?", platformId).First(&platform).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &platform, nil
}

func GetPlatformsByOrg(ctx context.Context, db *gorm.DB, orgId string) ([]Platform, error) {
	var platforms []Platform
	err := db.WithContext(ctx).Where("org_id = ?", orgId).Order("name").Find(&platforms).Error
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

func DeletePlatform(ctx context.Context, db *gorm.DB, platformId string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Order{}).Where("platform_id = ?", platformId).
			Update("platform_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", platformId).Delete(&Platform{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

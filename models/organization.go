package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every part, product, transaction
// and order carries its org_id; cross-tenant references are rejected.
type Organization struct {
	ID                 string          `gorm:"size:36;primary_key" json:"org_id"`
	Name               string          `gorm:"size:255;not null" json:"name" binding:"required"`
	MainCurrency       string          `gorm:"size:10;not null;default:USD" json:"main_currency"`
	AdditionalCurrency string          `gorm:"size:10;default:null" json:"additional_currency"`
	ExchangeRate       decimal.Decimal `gorm:"type:decimal(10,4);default:1" json:"exchange_rate"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Organization) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.MainCurrency == "" {
		o.MainCurrency = "USD"
	}
	if o.ExchangeRate.IsZero() {
		o.ExchangeRate = decimal.NewFromInt(1)
	}
	return nil
}

type NewOrganization struct {
	Name               string          `json:"name" binding:"required"`
	MainCurrency       string          `json:"main_currency"`
	AdditionalCurrency string          `json:"additional_currency"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
}

// CreateOrganization creates the org and makes the calling user its owner.
func CreateOrganization(ctx context.Context, db *gorm.DB, userId string, input *NewOrganization) (*Organization, error) {
	org := Organization{
		Name:               input.Name,
		MainCurrency:       input.MainCurrency,
		AdditionalCurrency: input.AdditionalCurrency,
		ExchangeRate:       input.ExchangeRate,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		membership := OrgMembership{
			OrgId:  org.ID,
			UserId: userId,
			Role:   MembershipRoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &org, nil
}

func GetOrganization(ctx context.Context, db *gorm.DB, orgId string) (*Organization, error) {
	var org Organization
	if err := db.WithContext(ctx).Where("id = ?", orgId).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func GetOrganizationsForUser(ctx context.Context, db *gorm.DB, userId string) ([]Organization, error) {
	var orgs []Organization
	err := db.WithContext(ctx).
		Joins("JOIN org_memberships ON org_memberships.org_id = organizations.id").
		Where("org_memberships.user_id = ?", userId).
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

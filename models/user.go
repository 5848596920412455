package models

import (
	"context"
	"errors"
	"time"

	"github.com/craftflowhq/craftflow_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string     `gorm:"size:36;primary_key" json:"user_id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email" binding:"required,email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	DisplayName  string     `gorm:"size:100" json:"display_name"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// OrgMembership links a user to an organization with a role.
type OrgMembership struct {
	OrgId    string         `gorm:"size:36;primary_key" json:"org_id"`
	UserId   string         `gorm:"size:36;primary_key" json:"user_id"`
	Role     MembershipRole `gorm:"size:20;not null;default:owner" json:"role"`
	JoinedAt time.Time      `gorm:"autoCreateTime" json:"joined_at"`
}

type NewUser struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	DisplayName string `json:"display_name" binding:"required,min=3,max=50"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func RegisterUser(ctx context.Context, db *gorm.DB, input *NewUser) (*User, error) {
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		DisplayName:  input.DisplayName,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, translateStoreError(err)
	}
	return &user, nil
}

// AuthenticateUser verifies credentials and stamps last_login_at.
func AuthenticateUser(ctx context.Context, db *gorm.DB, input *UserLogin) (*User, error) {
	var user User
	if err := db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(ctx context.Context, db *gorm.DB, userId string) (*User, error) {
	var user User
	if err := db.WithContext(ctx).Where("id = ?", userId).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// IsOrgMember reports whether the user belongs to the organization.
// Every org-scoped route checks this before touching tenant data.
func IsOrgMember(ctx context.Context, db *gorm.DB, orgId string, userId string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&OrgMembership{}).
		Where("org_id = ? AND user_id = ?", orgId, userId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

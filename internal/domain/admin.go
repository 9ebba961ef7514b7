package domain

import (
	"context"
	"time"
)

// Back-office roles. Admins manage app users, editors only sign in
// (content surfaces hang off the same accounts later).
const (
	AdminRoleAdmin  = "admin"
	AdminRoleEditor = "editor"
)

// AdminAccount is a back-office account. Deliberately separate from User:
// admin accounts authenticate locally with a password and are never synced
// with the identity provider.
type AdminAccount struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	DisplayName  string    `gorm:"size:128" json:"displayName"`
	Role         string    `gorm:"size:16;default:editor" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (AdminAccount) TableName() string { return "admin_accounts" }

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*AdminAccount, error)
	Create(ctx context.Context, a *AdminAccount) error
	Count(ctx context.Context) (int64, error)
}

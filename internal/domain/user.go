package domain

import (
	"context"
	"time"
)

// Role is the application-side role of a user. The identity provider only
// supplies a free-text hint; reconcile.MapRole folds it into this enum.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleMember    Role = "MEMBER"
	RoleGuest     Role = "GUEST"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember, RoleGuest:
		return true
	}
	return false
}

// User is an application user. ID equals the identity provider's user id;
// it is never generated locally. Points are application-assigned and must
// not be touched by reconciliation.
type User struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Email       string    `gorm:"uniqueIndex;size:191" json:"email"`
	Username    string    `gorm:"size:64" json:"username"`
	DisplayName string    `gorm:"size:128;default:Anonymous" json:"displayName"`
	AvatarURL   *string   `gorm:"size:512" json:"avatarUrl,omitempty"`
	Role        Role      `gorm:"size:16;default:MEMBER" json:"role"`
	Points      int       `gorm:"default:0" json:"points"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserChanges carries a partial update. Nil fields are left untouched.
type UserChanges struct {
	Email       *string
	Username    *string
	DisplayName *string
	AvatarURL   *string
	Role        *Role
}

// Empty reports whether no field would change.
func (c UserChanges) Empty() bool {
	return c.Email == nil && c.Username == nil && c.DisplayName == nil &&
		c.AvatarURL == nil && c.Role == nil
}

// UserRepository is the persistence contract for app users.
// Find methods return (nil, nil) when no row matches.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create inserts a new row. A duplicate id or email yields ErrDuplicate.
	Create(ctx context.Context, u *User) error
	// Update applies the non-nil fields of changes to the row with the given
	// id. Returns ErrNotFound when the row does not exist.
	Update(ctx context.Context, id string, changes UserChanges) error
	// Upsert inserts u or, when a row with u.ID already exists, refreshes its
	// email/username/displayName/avatarUrl. The role column is only refreshed
	// when refreshRole is set. Atomic with respect to concurrent callers.
	Upsert(ctx context.Context, u *User, refreshRole bool) error
	// ReassignID rewrites the primary key of the row currently stored under
	// oldID, leaving every other field untouched.
	ReassignID(ctx context.Context, oldID, newID string) (*User, error)
	// Delete removes the row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	AddPoints(ctx context.Context, id string, delta int) (*User, error)
}

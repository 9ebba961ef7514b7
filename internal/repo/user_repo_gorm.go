package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devhub/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, id string, c domain.UserChanges) error {
	if c.Empty() {
		// Still has to report a missing row.
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	}

	updates := map[string]any{}
	if c.Email != nil {
		updates["email"] = *c.Email
	}
	if c.Username != nil {
		updates["username"] = *c.Username
	}
	if c.DisplayName != nil {
		updates["display_name"] = *c.DisplayName
	}
	if c.AvatarURL != nil {
		updates["avatar_url"] = *c.AvatarURL
	}
	if c.Role != nil {
		updates["role"] = *c.Role
	}

	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return domain.ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "missing row" from "nothing changed".
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *UserRepo) Upsert(ctx context.Context, u *domain.User, refreshRole bool) error {
	cols := []string{"email", "username", "display_name", "avatar_url"}
	if refreshRole {
		cols = append(cols, "role")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(u).Error
}

func (r *UserRepo) ReassignID(ctx context.Context, oldID, newID string) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", oldID).Update("id", newID)
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, domain.ErrDuplicate
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, newID)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

func (r *UserRepo) List(ctx context.Context, search string, offset, limit int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		q = q.Where("email LIKE ? OR username LIKE ? OR display_name LIKE ?", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) AddPoints(ctx context.Context, id string, delta int) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// isDupKey matches unique-violation messages across mysql and postgres, so we
// do not depend on gorm.ErrDuplicatedKey being wired for every driver version.
func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}

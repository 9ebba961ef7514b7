package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"devhub/internal/domain"
)

type AdminRepo struct{ db *gorm.DB }

func NewAdminRepo(db *gorm.DB) *AdminRepo { return &AdminRepo{db: db} }

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	var a domain.AdminAccount
	err := r.db.WithContext(ctx).First(&a, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) Create(ctx context.Context, a *domain.AdminAccount) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *AdminRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AdminAccount{}).Count(&n).Error
	return n, err
}

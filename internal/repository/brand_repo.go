package repository

import (
	"context"

	"github.com/Renatopaccha/Dental-Gest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(ctx context.Context, b *model.Brand) error
	List(ctx context.Context, audience string) ([]model.Brand, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	FindBySlug(ctx context.Context, slug string) (*model.Brand, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, b *model.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type brandRepo struct{ db *gorm.DB }

func NewBrandRepository(db *gorm.DB) BrandRepository { return &brandRepo{db: db} }

func (r *brandRepo) Create(ctx context.Context, b *model.Brand) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *brandRepo) List(ctx context.Context, audience string) ([]model.Brand, error) {
	var list []model.Brand
	q := r.db.WithContext(ctx)
	if audience != "" {
		q = q.Where("target_audience = ?", audience)
	}
	err := q.Order("name asc").Find(&list).Error
	return list, err
}

func (r *brandRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var b model.Brand
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *brandRepo) FindBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	var b model.Brand
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *brandRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Brand{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *brandRepo) Update(ctx context.Context, b *model.Brand) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// Delete leaves products in place; their brand_id is set to NULL by the FK.
func (r *brandRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Brand{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package repository

import (
	"Orion_Tube/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	Exists(ctx context.Context, categoryID uint64) (bool, error)
	// 按名字去重插入，已存在的分类保持不变
	CreateIfNotExists(ctx context.Context, categories []model.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Exists(ctx context.Context, categoryID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", categoryID).Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) CreateIfNotExists(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&categories).Error
}

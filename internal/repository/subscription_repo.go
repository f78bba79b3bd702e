package repository

import (
	"Orion_Tube/internal/model"
	"context"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	// 重复订阅返回gorm.ErrDuplicatedKey
	Create(ctx context.Context, viewerID, creatorID uint64) error
	// 返回是否真的删掉了
	Delete(ctx context.Context, viewerID, creatorID uint64) (bool, error)
	SubscriberCounts(ctx context.Context, creatorIDs []uint64) (map[uint64]int64, error)
	// viewer订阅了creatorIDs中的哪些
	SubscribedSet(ctx context.Context, viewerID uint64, creatorIDs []uint64) (map[uint64]bool, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, viewerID, creatorID uint64) error {
	return r.db.WithContext(ctx).Create(&model.Subscription{ViewerID: viewerID, CreatorID: creatorID}).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, viewerID, creatorID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("viewer_id = ? AND creator_id = ?", viewerID, creatorID).
		Delete(&model.Subscription{})
	return res.RowsAffected > 0, res.Error
}

func (r *subscriptionRepository) SubscriberCounts(ctx context.Context, creatorIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Select("creator_id AS id, COUNT(*) AS count").
		Where("creator_id IN ?", creatorIDs).
		Group("creator_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *subscriptionRepository) SubscribedSet(ctx context.Context, viewerID uint64, creatorIDs []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return set, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("viewer_id = ? AND creator_id IN ?", viewerID, creatorIDs).
		Pluck("creator_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

package repository

import (
	"Orion_Tube/internal/model"
	"context"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	// 记录一次投递，event_id已存在时返回gorm.ErrDuplicatedKey
	Record(ctx context.Context, event *model.MuxWebhookEvent) error
	Exists(ctx context.Context, eventID string) (bool, error)

	WithTx(tx *gorm.DB) WebhookEventRepository
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) WithTx(tx *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: tx}
}

func (r *webhookEventRepository) Record(ctx context.Context, event *model.MuxWebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MuxWebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

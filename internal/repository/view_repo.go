package repository

import (
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewRepository interface {
	// 记录一次观看；同一用户重复观看只刷新updated_at
	Record(ctx context.Context, userID, videoID uint64) (*model.VideoView, error)
	ViewCounts(ctx context.Context, videoIDs []uint64) (map[uint64]int64, error)
	// 用户看过的公开视频，按最近观看时间倒序
	ListHistory(ctx context.Context, userID uint64, req pagination.Request) ([]model.VideoView, error)
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

func (r *viewRepository) Record(ctx context.Context, userID, videoID uint64) (*model.VideoView, error) {
	view := &model.VideoView{UserID: userID, VideoID: videoID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(view).Error
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *viewRepository) ViewCounts(ctx context.Context, videoIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(videoIDs))
	if len(videoIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.VideoView{}).
		Select("video_id AS id, COUNT(*) AS count").
		Where("video_id IN ?", videoIDs).
		Group("video_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *viewRepository) ListHistory(ctx context.Context, userID uint64, req pagination.Request) ([]model.VideoView, error) {
	var rows []model.VideoView
	err := r.db.WithContext(ctx).
		Select("video_views.*").
		Joins("JOIN videos ON videos.id = video_views.video_id").
		Where("video_views.user_id = ?", userID).
		Where("videos.visibility = ?", model.VisibilityPublic).
		Scopes(pagination.Keyset("video_views.updated_at", "video_views.video_id", req, false)).
		Find(&rows).Error
	return rows, err
}

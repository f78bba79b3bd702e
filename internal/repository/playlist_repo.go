package repository

import (
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"context"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	// 只查自己的播放列表，别人的当作不存在
	FindByOwner(ctx context.Context, playlistID, userID uint64) (*model.Playlist, error)
	// 关联的播放列表视频由外键级联删除
	DeleteByOwner(ctx context.Context, playlistID, userID uint64) (bool, error)
	List(ctx context.Context, userID uint64, req pagination.Request) ([]model.Playlist, error)
	// 用户全部播放列表，不分页，用于"添加到播放列表"弹窗
	ListAll(ctx context.Context, userID uint64) ([]model.Playlist, error)
	VideoCounts(ctx context.Context, playlistIDs []uint64) (map[uint64]int64, error)
	// playlistIDs中哪些包含了videoID
	ContainingVideo(ctx context.Context, playlistIDs []uint64, videoID uint64) (map[uint64]bool, error)

	// 重复添加返回gorm.ErrDuplicatedKey
	AddVideo(ctx context.Context, playlistID, videoID uint64) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint64) (bool, error)
	// 刷新播放列表的updated_at，让最近改动的排在前面
	Touch(ctx context.Context, playlistID uint64) error
	// 播放列表里的视频，公开的或者属于viewerID自己的，按加入时间倒序
	ListVideos(ctx context.Context, playlistID, viewerID uint64, req pagination.Request) ([]model.PlaylistVideo, error)

	WithTx(tx *gorm.DB) PlaylistRepository
}

type playlistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) WithTx(tx *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: tx}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *playlistRepository) FindByOwner(ctx context.Context, playlistID, userID uint64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", playlistID, userID).First(&playlist).Error
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepository) DeleteByOwner(ctx context.Context, playlistID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", playlistID, userID).Delete(&model.Playlist{})
	return res.RowsAffected > 0, res.Error
}

func (r *playlistRepository) List(ctx context.Context, userID uint64, req pagination.Request) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.WithContext(ctx).
		Where("playlists.user_id = ?", userID).
		Scopes(pagination.Keyset("playlists.updated_at", "playlists.id", req, false)).
		Find(&playlists).Error
	return playlists, err
}

func (r *playlistRepository) ListAll(ctx context.Context, userID uint64) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").Order("id DESC").
		Find(&playlists).Error
	return playlists, err
}

func (r *playlistRepository) VideoCounts(ctx context.Context, playlistIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := r.db.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Select("playlist_id AS id, COUNT(*) AS count").
		Where("playlist_id IN ?", playlistIDs).
		Group("playlist_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *playlistRepository) ContainingVideo(ctx context.Context, playlistIDs []uint64, videoID uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return set, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Where("playlist_id IN ? AND video_id = ?", playlistIDs, videoID).
		Pluck("playlist_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uint64) error {
	return r.db.WithContext(ctx).Create(&model.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}).Error
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&model.PlaylistVideo{})
	return res.RowsAffected > 0, res.Error
}

func (r *playlistRepository) Touch(ctx context.Context, playlistID uint64) error {
	return r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("id = ?", playlistID).
		Update("updated_at", r.db.NowFunc()).Error
}

func (r *playlistRepository) ListVideos(ctx context.Context, playlistID, viewerID uint64, req pagination.Request) ([]model.PlaylistVideo, error) {
	var rows []model.PlaylistVideo
	err := r.db.WithContext(ctx).
		Select("playlist_videos.*").
		Joins("JOIN videos ON videos.id = playlist_videos.video_id").
		Where("playlist_videos.playlist_id = ?", playlistID).
		Where("(videos.visibility = ? OR videos.user_id = ?)", model.VisibilityPublic, viewerID).
		Scopes(pagination.Keyset("playlist_videos.updated_at", "playlist_videos.video_id", req, false)).
		Find(&rows).Error
	return rows, err
}

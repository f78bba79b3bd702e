package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/repository"
)

// PlaylistItem 播放列表及其视频数；ContainsVideo只在按视频查询时有意义
type PlaylistItem struct {
	Playlist      model.Playlist
	VideoCount    int64
	ContainsVideo bool
}

type PlaylistService interface {
	Create(ctx context.Context, userID uint64, name string, description *string) (*model.Playlist, error)
	GetMany(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[PlaylistItem], error)
	// 用户的全部播放列表，标记每个列表是否已包含该视频
	GetForVideo(ctx context.Context, userID, videoID uint64) ([]PlaylistItem, error)
	GetOne(ctx context.Context, userID, playlistID uint64) (*PlaylistItem, error)
	Delete(ctx context.Context, userID, playlistID uint64) error

	GetVideos(ctx context.Context, userID, playlistID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	AddVideo(ctx context.Context, userID, playlistID, videoID uint64) error
	RemoveVideo(ctx context.Context, userID, playlistID, videoID uint64) error

	// 点赞过的视频，按点赞时间倒序
	GetLiked(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	// 观看历史，按最近一次观看倒序
	GetHistory(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
}

type playlistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	reactionRepo repository.ReactionRepository
	viewRepo     repository.ViewRepository
	stats        videoStats
	uow          data.UnitOfWork
}

func NewPlaylistService(
	playlistRepo repository.PlaylistRepository,
	videoRepo repository.VideoRepository,
	reactionRepo repository.ReactionRepository,
	viewRepo repository.ViewRepository,
	uow data.UnitOfWork,
) PlaylistService {
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		reactionRepo: reactionRepo,
		viewRepo:     viewRepo,
		stats:        videoStats{views: viewRepo, reactions: reactionRepo},
		uow:          uow,
	}
}

func (s *playlistService) Create(ctx context.Context, userID uint64, name string, description *string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: 播放列表名称不能为空", ErrBadRequest)
	}
	playlist := &model.Playlist{UserID: userID, Name: name, Description: description}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *playlistService) GetMany(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[PlaylistItem], error) {
	playlists, err := s.playlistRepo.List(ctx, userID, req)
	if err != nil {
		return pagination.Page[PlaylistItem]{}, err
	}
	items, err := s.withCounts(ctx, playlists)
	if err != nil {
		return pagination.Page[PlaylistItem]{}, err
	}
	return pagination.Build(items, req.Limit, func(it PlaylistItem) pagination.Cursor {
		return pagination.Cursor{ID: it.Playlist.ID, T: it.Playlist.UpdatedAt}
	}), nil
}

func (s *playlistService) GetForVideo(ctx context.Context, userID, videoID uint64) ([]PlaylistItem, error) {
	if _, err := s.visibleVideo(ctx, userID, videoID); err != nil {
		return nil, err
	}
	playlists, err := s.playlistRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.withCounts(ctx, playlists)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Playlist.ID)
	}
	contains, err := s.playlistRepo.ContainingVideo(ctx, ids, videoID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ContainsVideo = contains[items[i].Playlist.ID]
	}
	return items, nil
}

func (s *playlistService) GetOne(ctx context.Context, userID, playlistID uint64) (*PlaylistItem, error) {
	playlist, err := s.owned(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	items, err := s.withCounts(ctx, []model.Playlist{*playlist})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// 关联的playlist_videos随外键级联删除
func (s *playlistService) Delete(ctx context.Context, userID, playlistID uint64) error {
	deleted, err := s.playlistRepo.DeleteByOwner(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: 播放列表不存在", ErrNotFound)
	}
	return nil
}

func (s *playlistService) GetVideos(ctx context.Context, userID, playlistID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	rows, err := s.playlistRepo.ListVideos(ctx, playlistID, userID, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	joined := make([]joinRow, 0, len(rows))
	for _, r := range rows {
		joined = append(joined, joinRow{VideoID: r.VideoID, At: r.UpdatedAt})
	}
	return s.joinedPage(ctx, joined, userID, req.Limit, func(it *VideoItem, at time.Time) { it.AddedAt = &at })
}

// 加入视频：1、列表是自己的 2、视频可见 3、事务里插入关联并刷新列表的更新时间，重复加入返回冲突
func (s *playlistService) AddVideo(ctx context.Context, userID, playlistID, videoID uint64) error {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return err
	}
	if _, err := s.visibleVideo(ctx, userID, videoID); err != nil {
		return err
	}
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := repos.PlaylistRepo.AddVideo(ctx, playlistID, videoID); err != nil {
			return conflictOr(err, "视频已在播放列表中")
		}
		return repos.PlaylistRepo.Touch(ctx, playlistID)
	})
	return err
}

func (s *playlistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uint64) error {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return err
	}
	removed, err := s.playlistRepo.RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: 视频不在播放列表中", ErrNotFound)
	}
	return nil
}

func (s *playlistService) GetLiked(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	rows, err := s.reactionRepo.ListLiked(ctx, userID, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	joined := make([]joinRow, 0, len(rows))
	for _, r := range rows {
		joined = append(joined, joinRow{VideoID: r.VideoID, At: r.UpdatedAt})
	}
	return s.joinedPage(ctx, joined, userID, req.Limit, func(it *VideoItem, at time.Time) { it.LikedAt = &at })
}

func (s *playlistService) GetHistory(ctx context.Context, userID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	rows, err := s.viewRepo.ListHistory(ctx, userID, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	joined := make([]joinRow, 0, len(rows))
	for _, r := range rows {
		joined = append(joined, joinRow{VideoID: r.VideoID, At: r.UpdatedAt})
	}
	return s.joinedPage(ctx, joined, userID, req.Limit, func(it *VideoItem, at time.Time) { it.ViewedAt = &at })
}

// joinRow 关联表的一行：视频ID和排序用的时间
type joinRow struct {
	VideoID uint64
	At      time.Time
}

// joinedPage 1、按关联表的时间截断分页 2、按顺序取出视频并补统计 3、写回关联时间
func (s *playlistService) joinedPage(ctx context.Context, rows []joinRow, viewerID uint64, limit int, setAt func(*VideoItem, time.Time)) (pagination.Page[VideoItem], error) {
	page := pagination.Build(rows, limit, func(r joinRow) pagination.Cursor {
		return pagination.Cursor{ID: r.VideoID, T: r.At}
	})

	ids := make([]uint64, 0, len(page.Items))
	at := make(map[uint64]time.Time, len(page.Items))
	for _, r := range page.Items {
		ids = append(ids, r.VideoID)
		at[r.VideoID] = r.At
	}
	videos, err := s.videoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	items, err := s.stats.enrich(ctx, videos, viewerID)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	for i := range items {
		setAt(&items[i], at[items[i].Video.ID])
	}
	return pagination.Page[VideoItem]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *playlistService) withCounts(ctx context.Context, playlists []model.Playlist) ([]PlaylistItem, error) {
	items := make([]PlaylistItem, 0, len(playlists))
	if len(playlists) == 0 {
		return items, nil
	}
	ids := make([]uint64, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}
	counts, err := s.playlistRepo.VideoCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range playlists {
		items = append(items, PlaylistItem{Playlist: p, VideoCount: counts[p.ID]})
	}
	return items, nil
}

func (s *playlistService) owned(ctx context.Context, userID, playlistID uint64) (*model.Playlist, error) {
	playlist, err := s.playlistRepo.FindByOwner(ctx, playlistID, userID)
	if err != nil {
		return nil, notFoundOr(err, "播放列表不存在")
	}
	return playlist, nil
}

func (s *playlistService) visibleVideo(ctx context.Context, userID, videoID uint64) (*model.Video, error) {
	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	if !canView(video, userID) {
		return nil, fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}
	return video, nil
}

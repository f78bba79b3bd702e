package service

import (
	"context"
	"fmt"

	"Orion_Tube/internal/data"
	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/repository"
	"Orion_Tube/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// BrowseFilter 首页视频列表的筛选条件
type BrowseFilter struct {
	CategoryID *uint64
	Query      string
}

type VideoService interface {
	// 公开视频列表，按更新时间倒序
	GetMany(ctx context.Context, filter BrowseFilter, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	// 按播放量倒序
	GetTrending(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	// 已订阅创作者的公开视频
	GetSubscribed(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error)
	GetOne(ctx context.Context, videoID, viewerID uint64) (*VideoDetail, error)
	// 同分类的其他公开视频
	GetSuggestions(ctx context.Context, videoID, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error)

	GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error)
	RecordView(ctx context.Context, userID, videoID uint64) error
	// 对视频点赞/点踩；和当前反应相同则取消。返回操作后的反应，nil表示没有
	React(ctx context.Context, userID, videoID uint64, reactionType string) (*string, error)
}

type videoService struct {
	sf singleflight.Group

	videoRepo    repository.VideoRepository
	viewRepo     repository.ViewRepository
	reactionRepo repository.ReactionRepository
	subRepo      repository.SubscriptionRepository
	uow          data.UnitOfWork
	stats        videoStats
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	viewRepo repository.ViewRepository,
	reactionRepo repository.ReactionRepository,
	subRepo repository.SubscriptionRepository,
	uow data.UnitOfWork,
) VideoService {
	return &videoService{
		videoRepo:    videoRepo,
		viewRepo:     viewRepo,
		reactionRepo: reactionRepo,
		subRepo:      subRepo,
		uow:          uow,
		stats:        videoStats{views: viewRepo, reactions: reactionRepo},
	}
}

func videoKeyByUpdatedAt(it VideoItem) pagination.Cursor {
	return pagination.Cursor{ID: it.Video.ID, T: it.Video.UpdatedAt}
}

func videoKeyByViews(it VideoItem) pagination.Cursor {
	return pagination.Cursor{ID: it.Video.ID, C: it.ViewCount}
}

// listPage 1、查出limit+1行 2、补统计数据 3、截断并生成下一页游标
func (s *videoService) listPage(ctx context.Context, videos []model.Video, viewerID uint64, limit int, key func(VideoItem) pagination.Cursor) (pagination.Page[VideoItem], error) {
	items, err := s.stats.enrich(ctx, videos, viewerID)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return pagination.Build(items, limit, key), nil
}

func (s *videoService) GetMany(ctx context.Context, filter BrowseFilter, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	videos, err := s.videoRepo.List(ctx, repository.VideoQuery{
		PublicOnly: true,
		CategoryID: filter.CategoryID,
		Query:      filter.Query,
	}, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return s.listPage(ctx, videos, viewerID, req.Limit, videoKeyByUpdatedAt)
}

func (s *videoService) GetTrending(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	videos, err := s.videoRepo.ListTrending(ctx, repository.VideoQuery{PublicOnly: true}, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return s.listPage(ctx, videos, viewerID, req.Limit, videoKeyByViews)
}

func (s *videoService) GetSubscribed(ctx context.Context, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	videos, err := s.videoRepo.List(ctx, repository.VideoQuery{PublicOnly: true, SubscribedBy: &viewerID}, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return s.listPage(ctx, videos, viewerID, req.Limit, videoKeyByUpdatedAt)
}

// 视频详情：1、取基础信息(走缓存) 2、检查可见性 3、补充统计、作者订阅数和当前用户的订阅状态
func (s *videoService) GetOne(ctx context.Context, videoID, viewerID uint64) (*VideoDetail, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !canView(video, viewerID) {
		return nil, fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}

	items, err := s.stats.enrich(ctx, []model.Video{*video}, viewerID)
	if err != nil {
		return nil, err
	}
	detail := &VideoDetail{VideoItem: items[0]}

	subCounts, err := s.subRepo.SubscriberCounts(ctx, []uint64{video.UserID})
	if err != nil {
		return nil, err
	}
	detail.SubscriberCount = subCounts[video.UserID]

	if viewerID != 0 {
		set, err := s.subRepo.SubscribedSet(ctx, viewerID, []uint64{video.UserID})
		if err != nil {
			return nil, err
		}
		detail.ViewerSubscribed = set[video.UserID]
	}
	return detail, nil
}

func (s *videoService) GetSuggestions(ctx context.Context, videoID, viewerID uint64, req pagination.Request) (pagination.Page[VideoItem], error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	if !canView(video, viewerID) {
		return pagination.Page[VideoItem]{}, fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}
	videos, err := s.videoRepo.List(ctx, repository.VideoQuery{
		PublicOnly: true,
		CategoryID: video.CategoryID, // 没有分类时不按分类过滤
		ExcludeID:  video.ID,
	}, req)
	if err != nil {
		return pagination.Page[VideoItem]{}, err
	}
	return s.listPage(ctx, videos, viewerID, req.Limit, videoKeyByUpdatedAt)
}

// 根据videoID查找视频：1、查找Redis缓存 2、通过SingleFlight进行数据库查找，同一时间对同一视频只有一个请求落到数据库
func (s *videoService) GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	video, err := s.videoRepo.GetVideoCache(ctx, videoID)
	if err == nil && video != nil {
		return video, nil
	}
	// Redis出错不影响读取，降级到数据库
	if err != nil {
		logger.Log.WithError(err).WithField("video_id", videoID).Warn("读取视频缓存失败")
	}

	key := fmt.Sprintf("get_video_%d", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		dbVideo, dbErr := s.videoRepo.FindByID(ctx, videoID)
		if dbErr != nil {
			return nil, dbErr
		}
		// 查询成功后，将返回的dbVideo写回缓存！
		if cacheErr := s.videoRepo.SetVideoCache(ctx, dbVideo); cacheErr != nil {
			logger.Log.WithError(cacheErr).WithField("video_id", videoID).Warn("写入视频缓存失败")
		}
		return dbVideo, nil
	})
	if err != nil {
		return nil, notFoundOr(err, "视频不存在")
	}
	// 虽然找到了videoID对应的视频，但返回值是interface{}结构，需要断言
	return result.(*model.Video), nil
}

// RecordView 只能观看自己可见的视频
func (s *videoService) RecordView(ctx context.Context, userID, videoID uint64) error {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if !canView(video, userID) {
		return fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}
	_, err = s.viewRepo.Record(ctx, userID, videoID)
	return err
}

// 视频反应：1、检查视频 2、事务里读当前反应 3、相同则删除，不同或没有则upsert
func (s *videoService) React(ctx context.Context, userID, videoID uint64, reactionType string) (*string, error) {
	if !model.IsValidReaction(reactionType) {
		return nil, fmt.Errorf("%w: 未知的反应类型 %q", ErrBadRequest, reactionType)
	}
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !canView(video, userID) {
		return nil, fmt.Errorf("%w: 视频不存在", ErrNotFound)
	}

	var result *string
	err = s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		existing, err := repos.ReactionRepo.FindVideoReaction(ctx, userID, videoID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Type == reactionType {
			result = nil
			return repos.ReactionRepo.DeleteVideoReaction(ctx, userID, videoID)
		}
		result = &reactionType
		return repos.ReactionRepo.UpsertVideoReaction(ctx, &model.VideoReaction{
			UserID:  userID,
			VideoID: videoID,
			Type:    reactionType,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("更新视频反应失败: %w", err)
	}
	return result, nil
}

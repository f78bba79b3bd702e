package service

import (
	"context"
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/repository"
)

// VideoItem 列表里的一个视频，带上播放量和点赞点踩数
type VideoItem struct {
	Video        model.Video
	ViewCount    int64
	LikeCount    int64
	DislikeCount int64
	// 仅在登录用户查看时有值
	ViewerReaction *string
	// 以下三个时间只在点赞列表、历史记录、播放列表里有值
	LikedAt  *time.Time
	ViewedAt *time.Time
	AddedAt  *time.Time
}

// VideoDetail 视频详情页
type VideoDetail struct {
	VideoItem
	SubscriberCount  int64
	ViewerSubscribed bool
}

// videoStats 批量补充一页视频的统计数据，每种统计只查一次
type videoStats struct {
	views     repository.ViewRepository
	reactions repository.ReactionRepository
}

func (s videoStats) enrich(ctx context.Context, videos []model.Video, viewerID uint64) ([]VideoItem, error) {
	items := make([]VideoItem, 0, len(videos))
	if len(videos) == 0 {
		return items, nil
	}
	ids := make([]uint64, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}

	viewCounts, err := s.views.ViewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	reactionCounts, err := s.reactions.VideoReactionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var viewerReactions map[uint64]string
	if viewerID != 0 {
		if viewerReactions, err = s.reactions.ViewerVideoReactions(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	for _, v := range videos {
		item := VideoItem{
			Video:        v,
			ViewCount:    viewCounts[v.ID],
			LikeCount:    reactionCounts[v.ID].Likes,
			DislikeCount: reactionCounts[v.ID].Dislikes,
		}
		if t, ok := viewerReactions[v.ID]; ok {
			t := t
			item.ViewerReaction = &t
		}
		items = append(items, item)
	}
	return items, nil
}

// canView 公开视频所有人可见，私有视频只有作者可见
func canView(v *model.Video, viewerID uint64) bool {
	return v.IsPublic() || (viewerID != 0 && v.UserID == viewerID)
}

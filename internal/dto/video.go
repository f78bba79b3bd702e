package dto

import (
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"
)

// VideoResponse 视频的基础信息，不包含对象存储的key
type VideoResponse struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Visibility  string    `json:"visibility"`
	CategoryID  *uint64   `json:"category_id"`
	UserID      uint64    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	MuxStatus      *string `json:"mux_status"`
	MuxPlaybackID  *string `json:"mux_playback_id"`
	MuxTrackStatus *string `json:"mux_track_status"`
	ThumbnailURL   *string `json:"thumbnail_url"`
	PreviewURL     *string `json:"preview_url"`
	Duration       int64   `json:"duration"`

	Author *UserInfo `json:"author,omitempty"`
}

// StudioVideoResponse 作者自己看到的视频，多了Mux的各个ID
type StudioVideoResponse struct {
	VideoResponse
	MuxAssetID  *string `json:"mux_asset_id"`
	MuxUploadID *string `json:"mux_upload_id"`
	MuxTrackID  *string `json:"mux_track_id"`
}

// VideoItemResponse 列表中的视频，带统计数据
type VideoItemResponse struct {
	VideoResponse
	ViewCount      int64      `json:"view_count"`
	LikeCount      int64      `json:"like_count"`
	DislikeCount   int64      `json:"dislike_count"`
	ViewerReaction *string    `json:"viewer_reaction"`
	LikedAt        *time.Time `json:"liked_at,omitempty"`
	ViewedAt       *time.Time `json:"viewed_at,omitempty"`
	AddedAt        *time.Time `json:"added_at,omitempty"`
}

type VideoDetailResponse struct {
	VideoItemResponse
	SubscriberCount  int64 `json:"subscriber_count"`
	ViewerSubscribed bool  `json:"viewer_subscribed"`
}

type UploadResponse struct {
	Video StudioVideoResponse `json:"video"`
	URL   string              `json:"url"`
}

// ToVideoResponse 是我们的核心转换函数
func ToVideoResponse(v *model.Video) VideoResponse {
	resp := VideoResponse{
		ID:             v.ID,
		Title:          v.Title,
		Description:    v.Description,
		Visibility:     v.Visibility,
		CategoryID:     v.CategoryID,
		UserID:         v.UserID,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		MuxStatus:      v.MuxStatus,
		MuxPlaybackID:  v.MuxPlaybackID,
		MuxTrackStatus: v.MuxTrackStatus,
		ThumbnailURL:   v.ThumbnailURL,
		PreviewURL:     v.PreviewURL,
		Duration:       v.Duration,
	}
	// 没有Preload作者时不输出author
	if v.User.ID != 0 {
		author := ToUserInfo(&v.User)
		resp.Author = &author
	}
	return resp
}

func ToStudioVideoResponse(v *model.Video) StudioVideoResponse {
	return StudioVideoResponse{
		VideoResponse: ToVideoResponse(v),
		MuxAssetID:    v.MuxAssetID,
		MuxUploadID:   v.MuxUploadID,
		MuxTrackID:    v.MuxTrackID,
	}
}

func ToVideoItemResponse(it service.VideoItem) VideoItemResponse {
	return VideoItemResponse{
		VideoResponse:  ToVideoResponse(&it.Video),
		ViewCount:      it.ViewCount,
		LikeCount:      it.LikeCount,
		DislikeCount:   it.DislikeCount,
		ViewerReaction: it.ViewerReaction,
		LikedAt:        it.LikedAt,
		ViewedAt:       it.ViewedAt,
		AddedAt:        it.AddedAt,
	}
}

func ToVideoDetailResponse(d *service.VideoDetail) VideoDetailResponse {
	return VideoDetailResponse{
		VideoItemResponse: ToVideoItemResponse(d.VideoItem),
		SubscriberCount:   d.SubscriberCount,
		ViewerSubscribed:  d.ViewerSubscribed,
	}
}

func ToVideoPage(p pagination.Page[service.VideoItem]) pagination.Page[VideoItemResponse] {
	return pagination.Map(p, ToVideoItemResponse)
}

func ToUploadResponse(r *service.UploadResult) UploadResponse {
	return UploadResponse{Video: ToStudioVideoResponse(&r.Video), URL: r.URL}
}

package dto

import (
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/service"
)

// UserInfo 是在DTO中使用的、简化的用户信息
type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

type UserResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatorResponse 创作者主页
type CreatorResponse struct {
	UserResponse
	SubscriberCount  int64 `json:"subscriber_count"`
	VideoCount       int64 `json:"video_count"`
	ViewerSubscribed bool  `json:"viewer_subscribed"`
}

func ToUserInfo(u *model.User) UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL}
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL, CreatedAt: u.CreatedAt}
}

func ToCreatorResponse(p *service.CreatorProfile) CreatorResponse {
	return CreatorResponse{
		UserResponse:     ToUserResponse(&p.User),
		SubscriberCount:  p.SubscriberCount,
		VideoCount:       p.VideoCount,
		ViewerSubscribed: p.ViewerSubscribed,
	}
}

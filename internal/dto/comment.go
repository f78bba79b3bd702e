package dto

import (
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"
)

// CommentResponse 一级评论和回复共用，回复的parent_id不为空
type CommentResponse struct {
	ID             uint64    `json:"id"`
	VideoID        uint64    `json:"video_id"`
	ParentID       *uint64   `json:"parent_id"`
	Value          string    `json:"value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Author         UserInfo  `json:"author"`
	ReplyCount     int64     `json:"reply_count"`
	LikeCount      int64     `json:"like_count"`
	DislikeCount   int64     `json:"dislike_count"`
	ViewerReaction *string   `json:"viewer_reaction"`
}

type CommentPageResponse struct {
	Items      []CommentResponse `json:"items"`
	NextCursor *string           `json:"nextCursor"`
	TotalCount int64             `json:"total_count"`
}

func ToCommentResponse(c *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		VideoID:   c.VideoID,
		ParentID:  c.ParentID,
		Value:     c.Value,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User.ID != 0 {
		resp.Author = ToUserInfo(&c.User)
	}
	return resp
}

func ToCommentItemResponse(it service.CommentItem) CommentResponse {
	resp := ToCommentResponse(&it.Comment)
	resp.ReplyCount = it.ReplyCount
	resp.LikeCount = it.LikeCount
	resp.DislikeCount = it.DislikeCount
	resp.ViewerReaction = it.ViewerReaction
	return resp
}

func ToCommentPageResponse(p *service.CommentPage) CommentPageResponse {
	page := pagination.Map(p.Page, ToCommentItemResponse)
	return CommentPageResponse{Items: page.Items, NextCursor: page.NextCursor, TotalCount: p.TotalCount}
}

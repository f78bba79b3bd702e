package dto

import (
	"time"

	"Orion_Tube/internal/model"
	"Orion_Tube/internal/pagination"
	"Orion_Tube/internal/service"
)

type PlaylistResponse struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	VideoCount  int64     `json:"video_count"`
	// 只在按视频查询播放列表时输出
	ContainsVideo *bool `json:"contains_video,omitempty"`
}

func ToPlaylistResponse(p *model.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToPlaylistItemResponse(it service.PlaylistItem) PlaylistResponse {
	resp := ToPlaylistResponse(&it.Playlist)
	resp.VideoCount = it.VideoCount
	return resp
}

func ToPlaylistPage(p pagination.Page[service.PlaylistItem]) pagination.Page[PlaylistResponse] {
	return pagination.Map(p, ToPlaylistItemResponse)
}

func ToPlaylistsForVideo(items []service.PlaylistItem) []PlaylistResponse {
	out := make([]PlaylistResponse, 0, len(items))
	for _, it := range items {
		resp := ToPlaylistItemResponse(it)
		contains := it.ContainsVideo
		resp.ContainsVideo = &contains
		out = append(out, resp)
	}
	return out
}

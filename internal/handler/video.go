package handler

import (
	"net/http"
	"strconv"

	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type VideoHandler interface {
	GetMany(c *gin.Context)
	GetTrending(c *gin.Context)
	GetSubscribed(c *gin.Context)
	GetOne(c *gin.Context)
	GetSuggestions(c *gin.Context)
	RecordView(c *gin.Context)
}

type videoHandler struct {
	VideoService service.VideoService
}

func NewVideoHandler(videoService service.VideoService) VideoHandler {
	return &videoHandler{VideoService: videoService}
}

// 首页视频流：1、解析分类、关键字和分页参数 2、service层查询公开视频 3、dto转换后返回
func (h *videoHandler) GetMany(c *gin.Context) {
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	filter := service.BrowseFilter{Query: c.Query("query")}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			sendErrorResponse(c, http.StatusBadRequest, "无效的分类ID")
			return
		}
		filter.CategoryID = &categoryID
	}
	// 攻击溯源，用户分析，问题排查
	logCtx := logger.Log.WithField("ip", c.ClientIP())

	page, err := h.VideoService.GetMany(c.Request.Context(), filter, viewerID(c), req)
	if err != nil {
		respondError(c, logCtx, err, "获取视频列表")
		return
	}
	logCtx.WithField("count", len(page.Items)).Debug("成功获取视频列表")
	sendOK(c, "成功获取视频列表", dto.ToVideoPage(page))
}

func (h *videoHandler) GetTrending(c *gin.Context) {
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.VideoService.GetTrending(c.Request.Context(), viewerID(c), req)
	if err != nil {
		respondError(c, logger.Log.WithField("ip", c.ClientIP()), err, "获取热门视频")
		return
	}
	sendOK(c, "成功获取热门视频", dto.ToVideoPage(page))
}

func (h *videoHandler) GetSubscribed(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.VideoService.GetSubscribed(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger.Log.WithField("user_id", userID), err, "获取订阅视频")
		return
	}
	sendOK(c, "成功获取订阅视频", dto.ToVideoPage(page))
}

func (h *videoHandler) GetOne(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("video_id", videoID)

	detail, err := h.VideoService.GetOne(c.Request.Context(), videoID, viewerID(c))
	if err != nil {
		respondError(c, logCtx, err, "查找视频")
		return
	}
	sendOK(c, "成功获取视频", dto.ToVideoDetailResponse(detail))
}

func (h *videoHandler) GetSuggestions(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}
	page, err := h.VideoService.GetSuggestions(c.Request.Context(), videoID, viewerID(c), req)
	if err != nil {
		respondError(c, logger.Log.WithField("video_id", videoID), err, "获取推荐视频")
		return
	}
	sendOK(c, "成功获取推荐视频", dto.ToVideoPage(page))
}

// 记录观看：重复观看只刷新观看时间
func (h *videoHandler) RecordView(c *gin.Context) {
	videoID, ok := parseID(c, "video_id", "视频ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("video_id", videoID).WithField("user_id", userID)

	if err := h.VideoService.RecordView(c.Request.Context(), userID, videoID); err != nil {
		respondError(c, logCtx, err, "记录观看")
		return
	}
	sendOK(c, "已记录观看", nil)
}

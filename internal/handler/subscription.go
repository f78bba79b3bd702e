package handler

import (
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler interface {
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

type subscriptionHandler struct {
	SubscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) SubscriptionHandler {
	return &subscriptionHandler{SubscriptionService: subscriptionService}
}

func (h *subscriptionHandler) Subscribe(c *gin.Context) {
	creatorID, ok := parseID(c, "user_id", "用户ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("viewer_id", userID).WithField("creator_id", creatorID)

	if err := h.SubscriptionService.Subscribe(c.Request.Context(), userID, creatorID); err != nil {
		respondError(c, logCtx, err, "订阅")
		return
	}
	logCtx.Info("订阅成功")
	sendOK(c, "订阅成功", gin.H{"viewer_subscribed": true})
}

func (h *subscriptionHandler) Unsubscribe(c *gin.Context) {
	creatorID, ok := parseID(c, "user_id", "用户ID")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logCtx := logger.Log.WithField("viewer_id", userID).WithField("creator_id", creatorID)

	if err := h.SubscriptionService.Unsubscribe(c.Request.Context(), userID, creatorID); err != nil {
		respondError(c, logCtx, err, "取消订阅")
		return
	}
	logCtx.Info("已取消订阅")
	sendOK(c, "已取消订阅", gin.H{"viewer_subscribed": false})
}

package handler

import (
	"net/http"

	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"
	"Orion_Tube/pkg/mux"

	"github.com/gin-gonic/gin"
)

type WebhookHandler interface {
	HandleMux(c *gin.Context)
}

type webhookHandler struct {
	WebhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) WebhookHandler {
	return &webhookHandler{WebhookService: webhookService}
}

// Mux回调：1、原始body参与验签，不能先绑定JSON 2、service层验签并落库 3、成功统一返回200
func (h *webhookHandler) HandleMux(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "读取请求体失败")
		return
	}
	logCtx := logger.Log.WithField("ip", c.ClientIP()).WithField("bytes", len(body))

	if err := h.WebhookService.Handle(c.Request.Context(), body, c.GetHeader(mux.SignatureHeader)); err != nil {
		respondError(c, logCtx, err, "处理Mux回调")
		return
	}
	logCtx.Debug("Mux回调已处理")
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

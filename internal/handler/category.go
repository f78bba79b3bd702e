package handler

import (
	"Orion_Tube/internal/dto"
	"Orion_Tube/internal/service"
	"Orion_Tube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CategoryHandler interface {
	List(c *gin.Context)
}

type categoryHandler struct {
	CategoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) CategoryHandler {
	return &categoryHandler{CategoryService: categoryService}
}

func (h *categoryHandler) List(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, logger.Log.WithField("ip", c.ClientIP()), err, "获取分类")
		return
	}
	sendOK(c, "成功获取分类", dto.ToCategoryResponses(categories))
}

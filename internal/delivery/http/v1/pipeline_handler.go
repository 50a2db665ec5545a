package v1

import (
	"net/http"

	"resume-screening-backend/internal/delivery/http/response"
	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"
	"resume-screening-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PipelineHandler struct {
	pipeline *usecase.PipelineUsecase
	seen     domain.SeenCache
}

func NewPipelineHandler(rg *gin.RouterGroup, admin *gin.RouterGroup, pipeline *usecase.PipelineUsecase, seen domain.SeenCache) {
	handler := &PipelineHandler{pipeline: pipeline, seen: seen}

	rg.POST("/process-test-email", handler.Trigger)
	admin.POST("/clear-processed-cache", handler.ClearCache)
}

// Trigger godoc
// @Summary      Run one intake cycle
// @Description  Manually triggers email processing, same path as the background poller
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /process-test-email [post]
func (h *PipelineHandler) Trigger(c *gin.Context) {
	logger.Log.Info("Manual email processing triggered via API")
	if err := h.pipeline.ProcessNewEmails(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Email processing triggered successfully", nil)
}

// ClearCache godoc
// @Summary      Clear the seen-message cache
// @Description  Drops the dedup cache tier; the audit log still prevents reprocessing
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /clear-processed-cache [post]
// @Security     BearerAuth
func (h *PipelineHandler) ClearCache(c *gin.Context) {
	if err := h.seen.Clear(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	logger.Log.Info("Cleared processed messages cache")
	response.Success(c, http.StatusOK, "Cleared processed messages cache", nil)
}

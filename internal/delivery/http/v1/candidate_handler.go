package v1

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-screening-backend/internal/delivery/http/response"
	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"
	"resume-screening-backend/pkg/apperror"
	"resume-screening-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
	notifier    *usecase.NotificationUsecase
	store       domain.ResumeStore
}

func NewCandidateHandler(rg *gin.RouterGroup, admin *gin.RouterGroup, candidateUC domain.CandidateUsecase, notifier *usecase.NotificationUsecase, store domain.ResumeStore) {
	handler := &CandidateHandler{candidateUC: candidateUC, notifier: notifier, store: store}

	candidates := rg.Group("/candidates")
	{
		candidates.GET("", handler.List)
		candidates.GET("/export", handler.Export)
		candidates.GET("/:id", handler.Get)
		candidates.GET("/:id/resume", handler.DownloadResume)
		candidates.POST("/:id/status", handler.UpdateStatus)
		candidates.POST("/:id/invite", handler.SendInvite)
	}

	rg.POST("/review/done", handler.DoneReviewing)
	rg.GET("/metrics", handler.Metrics)
	rg.GET("/stats", handler.Stats)

	// destructive: erasure requests go through the admin guard
	admin.DELETE("/candidates/:id", handler.Delete)
}

// List godoc
// @Summary      List candidates
// @Description  All candidates with their latest screening result, best fit first
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidateUC.ListCandidates(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidates retrieved", gin.H{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// Get godoc
// @Summary      Get candidate details
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	cand, err := h.candidateUC.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate retrieved", cand)
}

// Delete godoc
// @Summary      Delete candidate data
// @Description  Erases the candidate and all linked screening results
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.DeleteCandidate(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted successfully", nil)
}

// Export godoc
// @Summary      Export candidate dataset
// @Description  Full candidate dataset with audit trails for compliance exports
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  domain.Export
// @Router       /candidates/export [get]
func (h *CandidateHandler) Export(c *gin.Context) {
	export, err := h.candidateUC.ExportCandidates(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	filename := fmt.Sprintf("candidates-export-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.JSON(http.StatusOK, export)
}

// DownloadResume godoc
// @Summary      Download candidate resume
// @Description  Streams the stored resume file, or returns a redirect URL for public locations
// @Tags         candidates
// @Produce      octet-stream
// @Param        id   path      string  true  "Candidate ID"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/resume [get]
func (h *CandidateHandler) DownloadResume(c *gin.Context) {
	cand, err := h.candidateUC.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	if cand.ResumeURL == "" {
		c.Error(apperror.NotFound("No resume found for this candidate"))
		return
	}

	// public object store URLs are handed back for the client to follow
	if strings.HasPrefix(cand.ResumeURL, "https://") {
		response.Success(c, http.StatusOK, "Resume available", gin.H{
			"download_url": cand.ResumeURL,
			"redirect":     true,
		})
		return
	}

	rc, err := h.store.Open(c.Request.Context(), cand.ResumeURL)
	if err != nil {
		logger.Log.Error("Failed to open stored resume", "locator", cand.ResumeURL, "error", err)
		c.Error(apperror.NotFound("Resume file not found"))
		return
	}
	defer rc.Close()

	filename := cand.Profile.ResumeFilename
	if filename == "" {
		filename = "resume"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Log.Error("Failed to stream resume", "error", err)
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary      Update candidate status
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id      path      string               true  "Candidate ID"
// @Param        status  body      UpdateStatusRequest  true  "New status"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Router       /candidates/{id}/status [post]
func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status required"))
		return
	}
	if err := h.candidateUC.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", nil)
}

type SendInviteRequest struct {
	StartISO string `json:"start_iso"`
	EndISO   string `json:"end_iso"`
}

// SendInvite godoc
// @Summary      Send interview invite
// @Description  Emails an interview invite with a calendar event; the slot defaults to tomorrow when omitted
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id     path      string             true   "Candidate ID"
// @Param        slot   body      SendInviteRequest  false  "Interview slot"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /candidates/{id}/invite [post]
func (h *CandidateHandler) SendInvite(c *gin.Context) {
	var req SendInviteRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	var opts usecase.InviteOptions
	if req.StartISO != "" && req.EndISO != "" {
		start, err1 := time.Parse(time.RFC3339, req.StartISO)
		end, err2 := time.Parse(time.RFC3339, req.EndISO)
		if err1 != nil || err2 != nil {
			c.Error(apperror.BadRequest("start_iso and end_iso must be RFC3339 timestamps"))
			return
		}
		opts.Start = start
		opts.End = end
	}

	if err := h.notifier.SendInvite(c.Request.Context(), c.Param("id"), opts); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Invite sent", nil)
}

type DoneReviewingRequest struct {
	Confirm bool `json:"confirm"`
}

// DoneReviewing godoc
// @Summary      Send feedback to remaining candidates
// @Description  Bulk-sends personalized feedback to every candidate still awaiting an outcome
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        confirm  body      DoneReviewingRequest  true  "Confirmation"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /review/done [post]
func (h *CandidateHandler) DoneReviewing(c *gin.Context) {
	var req DoneReviewingRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		c.Error(apperror.BadRequest("confirmation required"))
		return
	}

	sent, failures, err := h.notifier.SendPendingFeedback(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Feedback run completed", gin.H{
		"sent":     sent,
		"failures": failures,
	})
}

// Metrics godoc
// @Summary      Operational counters
// @Tags         metrics
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /metrics [get]
func (h *CandidateHandler) Metrics(c *gin.Context) {
	metrics, err := h.candidateUC.GetMetrics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Metrics retrieved", gin.H{"metrics": metrics})
}

// Stats godoc
// @Summary      Dashboard statistics
// @Tags         metrics
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /stats [get]
func (h *CandidateHandler) Stats(c *gin.Context) {
	stats, err := h.candidateUC.GetStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Statistics retrieved", stats)
}

package v1

import (
	"net/http"

	"resume-screening-backend/config"
	"resume-screening-backend/internal/delivery/http/middleware"
	"resume-screening-backend/internal/delivery/http/response"
	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CandidateUC   domain.CandidateUsecase
	Notifier      *usecase.NotificationUsecase
	Pipeline      *usecase.PipelineUsecase
	Store         domain.ResumeStore
	Seen          domain.SeenCache
	MailboxOnline bool
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		gmailStatus := "disconnected"
		if deps.MailboxOnline {
			gmailStatus = "connected"
		}
		response.Success(c, http.StatusOK, "System operational", gin.H{
			"service":                  "Resume Screening API",
			"gmail_service":            gmailStatus,
			"email_processing_enabled": deps.Config.EnableEmailProcessing,
		})
	})

	api := r.Group("/api")

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Admin-guarded destructive routes
	admin := api.Group("")
	admin.Use(middleware.AdminAuth(deps.Config.AdminJWTSecret))

	NewCandidateHandler(api, admin, deps.CandidateUC, deps.Notifier, deps.Store)
	NewPipelineHandler(api, admin, deps.Pipeline, deps.Seen)

	return r
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

// LoginLimit throttles POST /api/admin/auth/login per client IP.
type LoginLimit struct {
	PerMinute int
	Burst     int
}

type Handlers struct {
	Auth        *AuthHandler
	Candidate   *CandidateHandler
	Integration *IntegrationHandler
	Sync        *SyncHandler
}

func NewRouter(h Handlers, jwtSvc *auth.JWTService, limit LoginLimit, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		api.GET("/candidates", h.Candidate.List)
		api.GET("/candidates/:id", h.Candidate.Get)
		api.GET("/profiles", h.Candidate.Profiles)
		api.GET("/profiles/:linkedin_id", h.Candidate.GetByLinkedInID)
		api.GET("/filters/schools", h.Candidate.Schools)
		api.GET("/filters/workplaces", h.Candidate.Workplaces)
		api.GET("/stats", h.Candidate.Stats)

		admin := api.Group("/admin")
		admin.POST("/auth/login", RateLimitMiddleware(limit.PerMinute, limit.Burst, log), h.Auth.Login)

		private := admin.Group("")
		private.Use(AuthMiddleware(jwtSvc, log))
		{
			integrations := private.Group("/integrations")
			{
				integrations.POST("", h.Integration.Connect)
				integrations.GET("/active", h.Integration.Active)
				integrations.GET("/:id", h.Integration.Get)
				integrations.DELETE("/:id", h.Integration.Deactivate)
				integrations.PUT("/:id/sync-token", h.Integration.RecordSyncToken)
			}

			jobs := private.Group("/sync-jobs")
			{
				jobs.POST("", h.Sync.Start)
				jobs.GET("", h.Sync.List)
				jobs.POST("/reap", h.Sync.Reap)
				jobs.GET("/:id", h.Sync.Get)
				jobs.POST("/:id/progress", h.Sync.Progress)
				jobs.POST("/:id/finish", h.Sync.Finish)
			}
		}
	}

	return router
}

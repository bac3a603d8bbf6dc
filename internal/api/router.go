package api

import (
	"applyflow/internal/auth"
	"applyflow/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/applyflow" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())

		// Application forms
		group.GET("/application-form", auth.AuthMiddleware(cfg, rdb, false), GetApplicationFormHandler())
		group.POST("/application-form", auth.AuthMiddleware(cfg, rdb, false), CreateApplicationFormHandler())
		group.PUT("/application-form", auth.AuthMiddleware(cfg, rdb, false), UpdateApplicationFormHandler())
		group.GET("/questions", auth.AuthMiddleware(cfg, rdb, false), ListQuestionsHandler())

		// Candidate responses
		group.GET("/response", auth.AuthMiddleware(cfg, rdb, false), GetResponseHandler())
		group.POST("/response", auth.AuthMiddleware(cfg, rdb, false), CreateResponseHandler())
		group.PUT("/response", auth.AuthMiddleware(cfg, rdb, false), UpdateResponseHandler())
		group.DELETE("/response", auth.AuthMiddleware(cfg, rdb, false), DeleteResponseHandler())
		group.GET("/responses", auth.AuthMiddleware(cfg, rdb, false), ListResponsesHandler())

		// Reviewing
		group.GET("/review", auth.AuthMiddleware(cfg, rdb, false), GetNextReviewHandler())
		group.GET("/reviewresponse", auth.AuthMiddleware(cfg, rdb, false), GetReviewResponseHandler())
		group.POST("/reviewresponse", auth.AuthMiddleware(cfg, rdb, false), CreateReviewResponseHandler())
		group.PUT("/reviewresponse", auth.AuthMiddleware(cfg, rdb, false), UpdateReviewResponseHandler())
		group.GET("/reviewlist", auth.AuthMiddleware(cfg, rdb, false), ReviewListHandler())
		group.GET("/reviewhistory", auth.AuthMiddleware(cfg, rdb, false), ReviewHistoryHandler())

		// Review assignment
		group.POST("/reviewassignment", auth.AuthMiddleware(cfg, rdb, false), AssignReviewsHandler())
		group.GET("/reviewassignment/summary", auth.AuthMiddleware(cfg, rdb, false), AssignmentSummaryHandler())
		group.POST("/assignresponsereviewer", auth.AuthMiddleware(cfg, rdb, false), AssignResponseReviewerHandler())
		group.DELETE("/assignresponsereviewer", auth.AuthMiddleware(cfg, rdb, false), DeleteResponseReviewerHandler())
	}
	return r
}

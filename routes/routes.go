package routes

import (
	"net/http"
	"time"

	"smartfix/handlers"
	"smartfix/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRequestRoutes registers service request endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/requests")
	api.Use(auth)
	{
		api.POST("", hb.Requests.CreateRequestHandler)
		api.GET("", hb.Requests.ListRequestsHandler)
		api.GET("/:id", hb.Requests.GetRequestHandler)
		api.DELETE("/:id", hb.Requests.DeleteRequestHandler)

		api.POST("/:id/accept", hb.Requests.AcceptRequestHandler)
		api.POST("/:id/reject", hb.Requests.RejectRequestHandler)
		api.POST("/:id/start", hb.Requests.StartRequestHandler)
		api.POST("/:id/complete", hb.Requests.CompleteRequestHandler)
		api.POST("/:id/approve", hb.Requests.ApproveRequestHandler)
		api.POST("/:id/revision", hb.Requests.RequestRevisionHandler)
		api.POST("/:id/restart", hb.Requests.RestartRequestHandler)
		api.POST("/:id/cancel", hb.Requests.CancelRequestHandler)

		api.GET("/:id/matches", hb.Requests.MatchProvidersHandler)
		api.POST("/:id/images", hb.Requests.UploadImagesHandler)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/reviews")
	api.Use(auth)
	{
		api.POST("", hb.Reviews.CreateReviewHandler)
		api.PATCH("/:id", hb.Reviews.UpdateReviewHandler)
		api.DELETE("/:id", hb.Reviews.DeleteReviewHandler)
	}
}

// RegisterStatisticsRoutes registers provider and user endpoints, which
// are read-only views over requests and reviews.
func RegisterStatisticsRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	r.GET("/api/providers/:id/reviews", hb.Reviews.ListProviderReviewsHandler)
	r.GET("/api/providers/:id/statistics", auth, hb.Requests.ProviderStatisticsHandler)
	r.GET("/api/users/:id/statistics", auth, hb.Requests.UserStatisticsHandler)
}

// RegisterUserRoutes registers the caller's device endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	r.PUT("/api/users/me/fcm-token", auth, hb.Users.UpdateFCMTokenHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm SmartFix"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.JWTAuthMiddleware(hb.JWTSecret, hb.UserRepo, hb.AuthCache, logger)

	RegisterHealthRoute(r)
	RegisterRequestRoutes(r, hb, auth)
	RegisterReviewRoutes(r, hb, auth)
	RegisterStatisticsRoutes(r, hb, auth)
	RegisterUserRoutes(r, hb, auth)
}

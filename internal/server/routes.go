package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"jobtrail-backend/internal/auth"
	"jobtrail-backend/internal/controller"
	"jobtrail-backend/internal/middleware"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrigins := []string{"*"}
	if allowOriginsStr := os.Getenv("ALLOW_ORIGIN"); allowOriginsStr != "" {
		allowOrigins = strings.Split(allowOriginsStr, ",")
	}

	ct := s.Controller

	r.Use(middleware.SafeHeader())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/", ct.Hello)
	r.GET("/health", ct.Health)

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.Use(middleware.EnvRateLimitMiddleware())
			authRoute.POST("register", auth.RegisterHandler(s.DB))
			authRoute.POST("login", auth.LoginHandler(s.DB))
			authRoute.POST("logout", middleware.RequireAuth(s.DB), ct.Logout)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			jobs := needAuth.Group("/jobs")
			{
				jobs.GET("", ct.ListJobs)
				jobs.POST("", ct.CreateJob)
				jobs.GET(":id", ct.GetJob)
				jobs.PATCH(":id", ct.UpdateJob)
				jobs.DELETE(":id", ct.DeleteJob)

				jobs.PATCH(":id/status", ct.ChangeJobStatus)
				jobs.GET(":id/history", ct.GetJobHistory)

				jobs.GET(":id/notes", ct.ListNotes)
				jobs.POST(":id/notes", ct.CreateNote)
				jobs.DELETE(":id/notes/:noteId", ct.DeleteNote)

				jobs.GET(":id/documents", ct.ListDocuments)
				jobs.POST(":id/documents", middleware.SizeLimit(controller.MaxDocumentBytes), ct.UploadDocument)
				jobs.GET(":id/documents/:docId/download", ct.DownloadDocument)
				jobs.DELETE(":id/documents/:docId", ct.DeleteDocument)
			}

			needAuth.GET("/stats", ct.GetStats)
			needAuth.GET("/events", ct.StreamEvents)
		}
	}

	return r
}

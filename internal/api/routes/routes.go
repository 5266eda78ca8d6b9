package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Geeklady55/Interview-assistant1/internal/api/handlers"
	"github.com/Geeklady55/Interview-assistant1/internal/api/middleware"
)

type Deps struct {
	Session    *handlers.SessionHandler
	QA         *handlers.QAHandler
	Answer     *handlers.AnswerHandler
	Transcribe *handlers.TranscribeHandler
	Settings   *handlers.SettingsHandler
	Mock       *handlers.MockHandler
	Export     *handlers.ExportHandler
	Live       *handlers.LiveHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:   []string{"X-Request-Id"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")

	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Interview Assistant API", "version": "1.0.0"})
	})
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	auth := api.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/sessions", d.Session.Create)
	auth.GET("/sessions", d.Session.List)
	auth.GET("/sessions/:session_id", d.Session.Get)
	auth.PUT("/sessions/:session_id", d.Session.Update)
	auth.PUT("/sessions/:session_id/end", d.Session.End)
	auth.DELETE("/sessions/:session_id", d.Session.Delete)
	auth.GET("/sessions/:session_id/export", d.Export.Export)

	auth.GET("/qa-pairs/:session_id", d.QA.ListBySession)
	auth.DELETE("/qa-pairs/:qa_id", d.QA.Delete)

	auth.POST("/generate-answer", d.Answer.Generate)
	auth.POST("/code-assist", d.Answer.CodeAssist)
	auth.POST("/transcribe", d.Transcribe.Transcribe)
	auth.POST("/generate-mock-questions", d.Mock.GenerateQuestions)

	auth.GET("/settings", d.Settings.Get)
	auth.PUT("/settings", d.Settings.Update)

	auth.GET("/ws/live/:session_id", d.Live.SessionWS)
}

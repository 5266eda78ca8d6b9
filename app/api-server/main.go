package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Geeklady55/Interview-assistant1/config"
	"github.com/Geeklady55/Interview-assistant1/internal/api/handlers"
	"github.com/Geeklady55/Interview-assistant1/internal/api/middleware"
	"github.com/Geeklady55/Interview-assistant1/internal/api/routes"
	"github.com/Geeklady55/Interview-assistant1/internal/cache"
	"github.com/Geeklady55/Interview-assistant1/internal/logger"
	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/stt"
	mongorepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/mongo"
	pgrepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/postgres"
	"github.com/Geeklady55/Interview-assistant1/internal/services"
	"github.com/Geeklady55/Interview-assistant1/internal/storage"
	"github.com/Geeklady55/Interview-assistant1/internal/workers"
)

func main() {
	_ = godotenv.Load()
	appLog := logger.New()

	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.PostgresDB.AutoMigrate(&models.QAPair{}); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	appLog.Info("datastores connected")

	db := config.MongoDatabase()

	// repositories
	sessionRepo := mongorepo.NewSessionRepo(db)
	settingsRepo := mongorepo.NewSettingsRepo(db)
	chunkRepo := mongorepo.NewChunkRepo(db)
	qaRepo := pgrepo.NewQAPairRepo(config.PostgresDB)

	// providers
	router := buildLLMRouter(ctx)
	defer router.Close()

	sttProvider, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.Fatalf("STT init error: %v", err)
	}
	defer sttProvider.Close()

	var archiver storage.Uploader
	if bucket := os.Getenv("AUDIO_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer up.Close()
		archiver = up
	}

	rdb := config.RedisClient
	rcache := cache.NewRedisCache(rdb)

	// services
	sessionSvc := services.NewSessionService(sessionRepo, qaRepo)
	qaSvc := services.NewQAService(qaRepo)
	answerSvc := services.NewAnswerService(router, sessionSvc, qaSvc, rdb, appLog)
	transcribeSvc := services.NewTranscribeService(sttProvider, archiver, appLog)
	settingsSvc := services.NewSettingsService(settingsRepo, rcache)
	mockSvc := services.NewMockService(router, appLog)
	exportSvc := services.NewExportService(sessionSvc, qaSvc, rcache)
	chunkSvc := services.NewChunkService(chunkRepo)

	// live pipeline workers
	pool := &workers.AnswerWorkerPool{
		Redis:    rdb,
		Chunks:   chunkSvc,
		Sessions: sessionSvc,
		STT:      sttProvider,
		LLM:      router,
		Logger:   appLog,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLog))

	routes.RegisterRoutes(r, routes.Deps{
		Session:    handlers.NewSessionHandler(sessionSvc),
		QA:         handlers.NewQAHandler(qaSvc),
		Answer:     handlers.NewAnswerHandler(answerSvc),
		Transcribe: handlers.NewTranscribeHandler(transcribeSvc),
		Settings:   handlers.NewSettingsHandler(settingsSvc),
		Mock:       handlers.NewMockHandler(mockSvc),
		Export:     handlers.NewExportHandler(exportSvc),
		Live:       handlers.NewLiveHandler(sessionSvc, chunkSvc, rdb),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildLLMRouter wires the model families: gemini-* straight to Vertex,
// gpt-* and claude-* through the relay.
func buildLLMRouter(ctx context.Context) *llm.Router {
	relay := llm.NewRelay(
		os.Getenv("RELAY_BASE_URL"),
		os.Getenv("RELAY_API_KEY"),
		models.ModelGPT,
	)
	router := llm.NewRouter(relay)
	router.RegisterPrefix("gpt-", relay)
	router.RegisterPrefix("claude-", llm.NewRelay(
		os.Getenv("RELAY_BASE_URL"),
		os.Getenv("RELAY_API_KEY"),
		models.ModelClaude,
	))

	if project := os.Getenv("VERTEX_PROJECT_ID"); project != "" {
		vertex, err := llm.NewVertexGemini(ctx, project, os.Getenv("VERTEX_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			log.Fatalf("Vertex init error: %v", err)
		}
		router.RegisterPrefix("gemini-", vertex)
	}
	return router
}

package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/agent"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/client"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/history"
	"github.com/Geeklady55/Interview-assistant1/internal/logger"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	appLog := logger.New()

	backend := client.New(os.Getenv("BACKEND_URL"), os.Getenv("API_TOKEN"))

	historyPath := os.Getenv("HISTORY_PATH")
	if historyPath == "" {
		historyPath = "assistant-history.db"
	}
	hist, err := history.Open(historyPath)
	if err != nil {
		log.Fatalf("history init error: %v", err)
	}
	defer hist.Close()

	a := agent.New(backend, hist, version, appLog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version})
	})
	r.GET("/ws", a.ServeWS)

	port := os.Getenv("AGENT_PORT")
	if port == "" {
		port = "7810"
	}
	appLog.WithField("port", port).Info("assist agent listening on loopback")

	// loopback only: the UI on this machine is the single client
	if err := r.Run("127.0.0.1:" + port); err != nil {
		log.Fatalf("agent error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalcase-platform/internal/ai"
	"legalcase-platform/internal/config"
	"legalcase-platform/internal/database"
	"legalcase-platform/internal/logger"
	"legalcase-platform/internal/telemetry"
	"legalcase-platform/internal/vectorindex/pinecone"
	"legalcase-platform/middleware"
	"legalcase-platform/routes"
	"legalcase-platform/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("legalcase-platform", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	store := database.NewStore(mongoClient.Database(cfg.DBName))

	// Redis backs the HTTP rate limiter
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// One shared Gemini connection for embeddings and generation
	genaiClient, err := ai.NewGenAIClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer genaiClient.Close()

	embedder := ai.NewEmbeddingClient(genaiClient, cfg.EmbeddingsModel)
	generator := ai.NewGeminiClient(genaiClient, cfg.GenerativeModel, cfg.GeminiRPM)

	index, err := pinecone.NewIndex(pinecone.Config{
		Host:      cfg.PineconeHost,
		APIKey:    cfg.PineconeAPIKey,
		Namespace: cfg.PineconeNamespace,
	})
	if err != nil {
		log.Fatal("Failed to create vector index client:", err)
	}

	ingestion := services.NewIngestionService(embedder, index, store, cfg.MaxChunkSize)
	retrieval := services.NewRetrievalEngine(embedder, index, cfg.RetrievalTopK)
	synthesizer := services.NewAnswerSynthesizer(generator)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("legalcase-platform"))
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	api := router.Group("/api")
	{
		api.POST("/projects", routes.HandleCreateProject(store))
		api.GET("/projects", routes.HandleListProjects(store))
		api.GET("/projects/:projectId", routes.HandleGetProject(store))
		api.GET("/projects/:projectId/documents", routes.HandleListProjectDocuments(store))

		api.POST("/upload", routes.HandleDocumentUpload(store, ingestion, metrics))
		api.POST("/upload/file", routes.HandleFileUpload(cfg, store, queueClient))
		api.GET("/upload/status/:uploadId", routes.HandleUploadStatus(store))

		api.POST("/chat", routes.HandleChat(store, retrieval, synthesizer, metrics))
		api.GET("/chat/history/:projectId", routes.HandleChatHistory(store))

		api.GET("/cases", routes.HandleListCases())
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

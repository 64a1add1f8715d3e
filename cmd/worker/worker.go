package main

import (
	"context"
	"log"

	"legalcase-platform/internal/ai"
	"legalcase-platform/internal/config"
	"legalcase-platform/internal/database"
	"legalcase-platform/internal/logger"
	"legalcase-platform/internal/queue"
	"legalcase-platform/internal/telemetry"
	"legalcase-platform/internal/vectorindex/pinecone"
	"legalcase-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())
	store := database.NewStore(mongoClient.Database(cfg.DBName))

	genaiClient, err := ai.NewGenAIClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer genaiClient.Close()
	embedder := ai.NewEmbeddingClient(genaiClient, cfg.EmbeddingsModel)

	index, err := pinecone.NewIndex(pinecone.Config{
		Host:      cfg.PineconeHost,
		APIKey:    cfg.PineconeAPIKey,
		Namespace: cfg.PineconeNamespace,
	})
	if err != nil {
		log.Fatal("Failed to create vector index client:", err)
	}

	ingestion := services.NewIngestionService(embedder, index, store, cfg.MaxChunkSize)
	extractor := services.NewPDFExtractor(cfg.MaxFileSize)
	processor := queue.NewTaskProcessor(store, ingestion, extractor, metrics)

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestDocument, processor.ProcessIngestDocument)

	logger.Info("Starting ingestion worker", "redis", cfg.RedisURL, "concurrency", 10)
	if err := server.Run(mux); err != nil {
		log.Fatal("Worker stopped:", err)
	}
}

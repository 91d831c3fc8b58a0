/*
Copyright © 2025 Periferia IT Group
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/periferia-labs/perxia-be/config"
	"github.com/periferia-labs/perxia-be/database"
	"github.com/periferia-labs/perxia-be/handler"
	"github.com/periferia-labs/perxia-be/repository"
	"github.com/periferia-labs/perxia-be/service"
	"github.com/periferia-labs/perxia-be/types"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Perxia backend server",
	Long:  `Starts the HTTP server: document ingestion, retrieval search, hub browsing and RAG chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Adapters
		chunkIndex, err := database.NewWeaviateChunkStore(cfg.DocumentIndex)
		if err != nil {
			log.Fatalf("Failed to connect to document index: %v", err)
		}
		if err := chunkIndex.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure document index schema: %v", err)
		}

		hubIndex, err := database.NewWeaviateHubStore(cfg.HubIndex)
		if err != nil {
			log.Fatalf("Failed to connect to hub index: %v", err)
		}
		if hubIndex == nil {
			log.Println("Hub index not configured, hub endpoints disabled")
		}

		mongoDb, err := database.NewMongoDatabase(context.Background(), cfg.MongoConfig)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))

		storage, err := service.NewStorageService(cfg.ArchiveDir)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}

		// Services
		chunker := service.NewChunkerService(types.ChunkOptions{
			MaxChunkSize: cfg.ChunkingConfig.MaxChunkSize,
			MinChunkSize: cfg.ChunkingConfig.MinChunkSize,
			Overlap:      cfg.ChunkingConfig.Overlap,
		})
		embedder := service.NewEmbeddingService(
			cfg.OpenAIConfig.BaseURL,
			cfg.OpenAIConfig.APIKey,
			cfg.OpenAIConfig.EmbeddingModel,
			cfg.OpenAIConfig.EmbeddingDimension,
		)
		extractor := service.NewLocalExtractor("")
		enricher := service.NewEnrichService()

		// A nil *WeaviateHubStore must stay a nil interface so availability
		// checks see "hub disabled".
		var hubSource database.HubIndex
		if hubIndex != nil {
			hubSource = hubIndex
		}
		hubService := service.NewHubService(hubSource, enricher)
		fileService := service.NewFileService(storage, extractor, chunker, embedder, chunkIndex, documentRepo)
		retrieval := service.NewRetrievalService(chunkIndex, hubSource, embedder, enricher, types.ContextOptions{
			TopDocuments: cfg.RetrievalConfig.TopDocuments,
			TopHub:       cfg.RetrievalConfig.TopHub,
			UseHub:       cfg.RetrievalConfig.UseHub,
		})

		var aiService service.AIService
		if len(cfg.GeminiConfig.APIKeys) > 0 {
			aiService, err = service.NewGeminiService(cfg.GeminiConfig.APIKeys, cfg.GeminiConfig.Model)
			if err != nil {
				log.Fatalf("Failed to initialize Gemini service: %v", err)
			}
		} else {
			aiService = service.NewOpenAIService(cfg.OpenAIConfig.BaseURL, cfg.OpenAIConfig.APIKey, cfg.OpenAIConfig.ChatModel)
		}

		wsService := service.NewWebSocketService(aiService, retrieval, cfg.RetrievalConfig.UseHub)

		// Handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(aiService, retrieval, cfg.RetrievalConfig.UseHub)
		documentHandler := handler.NewDocumentHandler(fileService, chunkIndex, embedder)
		hubHandler := handler.NewHubHandler(hubService)
		healthHandler := handler.NewHealthHandler(embedder, aiService, hubService, true, true)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/chat", chatHandler.HandleChat)

			apiV1.POST("/documents/upload", documentHandler.Upload)
			apiV1.GET("/documents", documentHandler.List)
			apiV1.GET("/documents/stats", documentHandler.Stats)
			apiV1.DELETE("/documents/:documentId", documentHandler.Delete)
			apiV1.POST("/documents/search", documentHandler.Search)

			apiV1.GET("/hub/items", hubHandler.Items)
			apiV1.GET("/hub/categories/:category", hubHandler.Category)
			apiV1.GET("/hub/tags", hubHandler.Tags)
			apiV1.GET("/hub/stats", hubHandler.Stats)

			apiV1.GET("/health", healthHandler.Health)
		}

		router.GET("/ws/chat", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/AlexNguyen244/casebase-takehome/config"
	"github.com/AlexNguyen244/casebase-takehome/controller"
	"github.com/AlexNguyen244/casebase-takehome/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Create Chroma client using v2 API
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if closeErr := chromaClient.Close(); closeErr != nil {
			log.Printf("Warning: Failed to close chroma client: %v", closeErr)
		}
	}()

	// Index creation is check-then-create, so it happens here once,
	// before traffic, rather than lazily on first request.
	collection, err := services.EnsureCollection(context.Background(), chromaClient, cfg.CollectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	tokenizer, err := services.NewTiktokenTokenizer()
	if err != nil {
		log.Fatalf("FATAL: Failed to load tokenizer: %v", err)
	}

	chunker, err := services.NewChunkingService(tokenizer, services.ChunkingOptions{
		TargetTokens:           cfg.TargetTokens,
		OverlapTokens:          cfg.OverlapTokens,
		StructuralCeilingChars: cfg.StructuralCeilingChars,
		StructuralOverlapChars: cfg.StructuralOverlapChars,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create chunking service: %v", err)
	}

	parser := services.NewPDFParserService()
	embedder := services.NewEmbeddingService(httpClient, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	index := services.NewVectorIndexService(collection, cfg.CollectionName, cfg.EmbeddingDimension, cfg.DeleteEnumerationLimit)
	ragService := services.NewRAGService(parser, chunker, embedder, index)

	store, err := services.NewStorageService(cfg.StorageDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to create storage service: %v", err)
	}

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	chatService := services.NewChatService(ragService, geminiClient, cfg.GeminiModel)
	ragController := controller.NewRAGController(ragService, store, chatService)

	router := gin.Default()
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		totalChunks, err := ragService.TotalChunks(c.Request.Context())
		if err != nil {
			totalChunks = -1
		}
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"service":      "Document QA API",
			"total_chunks": totalChunks,
		})
	})

	api := router.Group("/api")
	{
		api.POST("/pdfs/upload", ragController.UploadPDF)
		api.POST("/pdfs/upload-multiple", ragController.UploadMultiplePDFs)
		api.GET("/pdfs", ragController.ListPDFs)
		api.GET("/pdfs/view/*key", ragController.ViewPDF)
		api.DELETE("/pdfs/*key", ragController.DeletePDF)
		api.POST("/rag/query", ragController.QueryRAG)
		api.POST("/chat", ragController.Chat)
	}

	log.Printf("Document QA backend starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] || allowed["*"] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

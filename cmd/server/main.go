package main

import (
	"context"
	"log"
	"time"

	"voiceoflaw-backend/auth"
	"voiceoflaw-backend/config"
	"voiceoflaw-backend/entitlement"
	"voiceoflaw-backend/handlers"
	"voiceoflaw-backend/repository"
	"voiceoflaw-backend/service"
	"voiceoflaw-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stripe/stripe-go/v82"
	"google.golang.org/api/option"
)

const tokenTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()

	stripe.Key = cfg.StripeSecretKey

	// Initialize database connection
	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	// Initialize storage
	fileStorage, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.StorageLocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	fileRepo := repository.NewFileRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	bookRepo := repository.NewBookRepository(db)
	postRepo := repository.NewPostRepository(db)
	contentRepo := repository.NewContentRepository(db)

	// Initialize Gemini client
	geminiClient, err := initGemini(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	rules := entitlement.Rules{
		TrialDays:        cfg.TrialDays,
		DailyLimit:       cfg.DailyLimit,
		SubscriptionDays: cfg.SubscriptionDays,
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)

	// Initialize services
	authService := service.NewAuthService(
		service.WithAuthUserStore(userRepo),
		service.WithTokenManager(tokens),
		service.WithAuthRules(rules),
	)

	entitlementService := service.NewEntitlementService(
		service.WithEntitlementUserStore(userRepo),
		service.WithEntitlementRules(rules),
	)

	subscriptionService := service.NewSubscriptionService(
		service.WithSubscriptionUserStore(userRepo),
		service.WithSubscriptionPaymentStore(paymentRepo),
		service.WithSubscriptionRules(rules),
	)

	retriever := service.NewContextRetriever(
		service.WithRetrieverCases(caseRepo),
		service.WithRetrieverBooks(bookRepo),
		service.WithRetrieverPosts(postRepo),
		service.WithRetrieverStorage(fileStorage),
	)

	generator := service.NewResponseGenerator(
		service.WithTextGenerator(service.NewGeminiGenerator(geminiClient, cfg.GeminiModel)),
	)

	chatService := service.NewChatService(
		service.WithChatConversationStore(conversationRepo),
		service.WithChatRetriever(retriever),
		service.WithChatGenerator(generator),
		service.WithChatEntitlements(entitlementService),
	)

	newsService := service.NewNewsService(cfg.NewsAPIURL, cfg.NewsAPIKey)

	// Expire stale trials and subscriptions in the background
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go subscriptionService.StartExpirySweep(sweepCtx, cfg.SweepInterval)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	caseHandler := handlers.NewCaseHandler(caseRepo, fileRepo, noteRepo, fileStorage, entitlementService)
	noteHandler := handlers.NewNoteHandler(noteRepo, entitlementService)
	bookHandler := handlers.NewBookHandler(bookRepo, fileStorage, entitlementService)
	chatHandler := handlers.NewChatHandler(chatService)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, userRepo, subscriptionService, cfg)
	contentHandler := handlers.NewContentHandler(postRepo, contentRepo, newsService, entitlementService)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")

	// Public endpoints
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/payments/webhook", paymentHandler.Webhook)

	// Authenticated endpoints
	authed := api.Group("", handlers.AuthMiddleware(tokens))
	{
		authed.GET("/auth/profile", authHandler.Profile)
		authed.PUT("/auth/complete-profile", authHandler.CompleteProfile)

		// Case endpoints
		authed.POST("/cases", caseHandler.CreateCase)
		authed.GET("/cases", caseHandler.ListCases)
		authed.GET("/cases/stats", caseHandler.CaseStats)
		authed.GET("/cases/:id", caseHandler.GetCase)
		authed.PUT("/cases/:id", caseHandler.UpdateCase)
		authed.PATCH("/cases/:id/status", caseHandler.UpdateCaseStatus)
		authed.DELETE("/cases/:id", caseHandler.DeleteCase)
		authed.POST("/cases/:id/sections/:section/files", caseHandler.UploadSectionFile)
		authed.POST("/cases/:id/sections/:section/notes", caseHandler.AttachSectionNote)
		authed.DELETE("/cases/:id/sections/:section/items/:itemId", caseHandler.DeleteSectionItem)

		// File endpoints
		authed.GET("/files/:id", caseHandler.DownloadFile)

		// Note endpoints
		authed.POST("/notes", noteHandler.CreateNote)
		authed.GET("/notes", noteHandler.ListNotes)
		authed.GET("/notes/:id", noteHandler.GetNote)
		authed.PUT("/notes/:id", noteHandler.UpdateNote)
		authed.DELETE("/notes/:id", noteHandler.DeleteNote)

		// Book library endpoints
		authed.GET("/books", bookHandler.ListBooks)
		authed.GET("/books/stats", bookHandler.BookStats)
		authed.GET("/books/:id", bookHandler.GetBook)
		authed.GET("/books/:id/download", bookHandler.DownloadBook)

		// Chatbot endpoints
		authed.POST("/chatbot/chat", chatHandler.Chat)
		authed.GET("/chatbot/conversations", chatHandler.ListConversations)
		authed.GET("/chatbot/conversations/:id", chatHandler.GetConversation)
		authed.PATCH("/chatbot/conversations/:id/bookmark", chatHandler.BookmarkConversation)
		authed.DELETE("/chatbot/conversations/:id", chatHandler.DeleteConversation)

		// Payment endpoints
		authed.POST("/payments/create-checkout-session", paymentHandler.CreateCheckoutSession)
		authed.POST("/payments", paymentHandler.SubmitPayment)
		authed.GET("/payments", paymentHandler.ListMyPayments)

		// Content endpoints
		authed.GET("/posts", contentHandler.ListPosts)
		authed.GET("/posts/:id", contentHandler.GetPost)
		authed.GET("/announcements", contentHandler.ListAnnouncements)
		authed.GET("/cards", contentHandler.ListCards)
		authed.GET("/updates", contentHandler.ListUpdates)
		authed.GET("/news", contentHandler.LegalNews)
	}

	// Admin endpoints
	admin := api.Group("/admin", handlers.AuthMiddleware(tokens), handlers.RequireAdmin())
	{
		admin.GET("/users", paymentHandler.ListUsers)
		admin.GET("/payments/pending", paymentHandler.ListPendingPayments)
		admin.POST("/payments/:id/approve", paymentHandler.ApprovePayment)
		admin.POST("/payments/:id/reject", paymentHandler.RejectPayment)

		admin.POST("/books", bookHandler.CreateBook)
		admin.PUT("/books/:id", bookHandler.UpdateBook)
		admin.DELETE("/books/:id", bookHandler.DeleteBook)

		admin.POST("/posts", contentHandler.CreatePost)
		admin.PUT("/posts/:id", contentHandler.UpdatePost)
		admin.DELETE("/posts/:id", contentHandler.DeletePost)

		admin.POST("/announcements", contentHandler.CreateAnnouncement)
		admin.DELETE("/announcements/:id", contentHandler.DeleteAnnouncement)
		admin.POST("/cards", contentHandler.CreateCard)
		admin.DELETE("/cards/:id", contentHandler.DeleteCard)
		admin.POST("/updates", contentHandler.CreateUpdate)
		admin.DELETE("/updates/:id", contentHandler.DeleteUpdate)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Postgres connection established")
	return pool, nil
}

func initGemini(apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}

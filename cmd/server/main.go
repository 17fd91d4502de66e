package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/strivetech/homematch/internal/config"
	"github.com/strivetech/homematch/internal/crm"
	"github.com/strivetech/homematch/internal/handler"
	"github.com/strivetech/homematch/internal/rentcast"
	"github.com/strivetech/homematch/internal/service"
	"github.com/strivetech/homematch/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("HomeMatch Core")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Session store: Redis when configured, in-process memory otherwise
	var sessions session.Store
	if cfg.Session.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		sessions = session.NewRedisStore(client, cfg.Session.TTL)
		log.Printf("✅ Redis session store: %s", cfg.Session.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("✅ In-memory session store")
	}

	// Extraction model
	var caller service.ToolCaller
	if cfg.OpenAI.Enabled {
		caller = service.NewOpenAIToolCaller(cfg.OpenAI.APIKey, cfg.OpenAI.APIBase, cfg.OpenAI.Model)
		log.Printf("✅ Extraction model: %s", cfg.OpenAI.Model)
	} else {
		log.Println("⚠️  OPENAI_API_KEY not set - extraction runs on the regex fallback only")
	}
	extractor := service.NewExtractor(caller, cfg.OpenAI.Timeout)

	// Listing client
	var rentcastOpts []rentcast.Option
	if cfg.RentCast.BaseURL != "" {
		rentcastOpts = append(rentcastOpts, rentcast.WithBaseURL(cfg.RentCast.BaseURL))
	}
	rentcastOpts = append(rentcastOpts,
		rentcast.WithTimeout(cfg.RentCast.Timeout),
		rentcast.WithCacheTTL(cfg.RentCast.CacheTTL),
	)
	listings := rentcast.NewClient(cfg.RentCast.APIKey, rentcastOpts...)
	log.Println("✅ RentCast client initialized")

	// Optional CRM lead store
	var leads crm.LeadStore
	if cfg.Postgres.DSN != "" {
		store, err := crm.NewPostgresLeadStore(cfg.Postgres.DSN, cfg.Postgres.MaxConnections, cfg.Postgres.MaxIdleConnections)
		if err != nil {
			log.Fatalf("Failed to connect to lead database: %v", err)
		}
		defer store.Close()
		leads = store
		log.Println("✅ Connected to lead database")
	} else {
		log.Println("⚠️  DATABASE_URL not set - CRM lead sync disabled")
	}

	// Pipeline
	matcher := service.NewMatcher(cfg.Scoring.PricePerSqftBaseline)
	chatService := service.NewChatService(extractor, sessions, listings, matcher, leads, cfg.RentCast.Timeout)
	log.Println("✅ Services initialized")

	// Handlers
	chatHandler := handler.NewChatHandler(chatService)
	activityHandler := handler.NewActivityHandler(chatService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "homematch-core",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat/turn", chatHandler.Turn)
		apiV1.POST("/chat/turn/stream", chatHandler.TurnStream)
		apiV1.POST("/chat/search", chatHandler.Search)
		apiV1.POST("/activity", activityHandler.Track)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}

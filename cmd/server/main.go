package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"concierge/internal/adapter"
	"concierge/internal/agent"
	"concierge/internal/graph"
	"concierge/internal/memory"
	"concierge/internal/personality"
	"concierge/internal/state"
	"concierge/internal/tools"
	"concierge/pkg/config"
	"concierge/pkg/logger"
)

func main() {
	// Load configuration first so the logger knows the environment
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting concierge agent server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Wire dependencies. Clients are constructed once per process and
	// injected; no package-level singletons.
	repo := graph.NewRepository(driver)
	memoryClient := memory.NewClient(repo)
	engine := personality.NewEngine(repo)
	providerClient := tools.NewProviderClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderTimeout)
	guideFetcher := tools.NewGuideFetcher(cfg.CityGuideURL)
	executor := tools.NewExecutor(providerClient, guideFetcher, memoryClient)
	if err := executor.Validate(); err != nil {
		log.Fatal("Tool catalog validation failed", zap.Error(err))
	}
	llm := adapter.NewLLMAdapter(cfg.LLMGatewayURL, cfg.LLMAPIKey, adapter.Options{
		Model:       cfg.ModelID,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
	})
	orch := agent.NewOrchestrator(memoryClient, engine, executor, llm)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Tenant-ID, X-User-ID, X-Property-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Aggregated health
	router.GET("/health", func(c *gin.Context) {
		health := orch.Health(c.Request.Context())
		code := http.StatusOK
		if health.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, health)
	})

	api := router.Group("/api")
	{
		// Chat with the concierge
		api.POST("/chat", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}

			var req struct {
				Message string                 `json:"message" binding:"required"`
				Context map[string]interface{} `json:"context"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result := orch.Chat(c.Request.Context(), identity, req.Message)
			c.JSON(http.StatusOK, result)
		})

		// Full conversation history
		api.GET("/memory/history", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"turns": memoryClient.GetHistory(c.Request.Context(), identity)})
		})

		// Relevance search over stored memory
		api.POST("/memory/search", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}

			var req struct {
				Query string `json:"query" binding:"required"`
				Limit int    `json:"limit"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			results := memoryClient.Search(c.Request.Context(), identity, req.Query, req.Limit)
			c.JSON(http.StatusOK, gin.H{"results": results})
		})

		// Irreversible history wipe; failure must surface
		api.DELETE("/memory", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}
			if err := memoryClient.Clear(c.Request.Context(), identity); err != nil {
				log.Error("Failed to clear memory", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear memory"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "cleared"})
		})

		// Point mutations on single memory records
		api.PUT("/memory/:id", func(c *gin.Context) {
			if _, ok := identityFrom(c); !ok {
				return
			}
			var req struct {
				Content string `json:"content" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := memoryClient.Update(c.Request.Context(), c.Param("id"), req.Content); err != nil {
				log.Error("Failed to update memory record", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update memory record"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "updated"})
		})

		api.DELETE("/memory/:id", func(c *gin.Context) {
			if _, ok := identityFrom(c); !ok {
				return
			}
			if err := memoryClient.Delete(c.Request.Context(), c.Param("id")); err != nil {
				log.Error("Failed to delete memory record", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete memory record"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
		})

		// Memory snapshot for dashboards
		api.GET("/memory/stats", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, memoryClient.Stats(c.Request.Context(), identity))
		})

		// Current personality summary
		api.GET("/personality", func(c *gin.Context) {
			identity, ok := identityFrom(c)
			if !ok {
				return
			}
			st, err := engine.Load(c.Request.Context(), identity.TenantID, identity.PropertyID)
			if err != nil {
				log.Error("Failed to load personality", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load personality"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"state":   st,
				"summary": engine.Summarize(st),
			})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// identityFrom extracts the authenticated identity headers set by the API
// gateway. Writes a 400 and returns ok=false when isolation keys are
// missing.
func identityFrom(c *gin.Context) (state.Identity, bool) {
	identity := state.Identity{
		TenantID:   c.GetHeader("X-Tenant-ID"),
		UserID:     c.GetHeader("X-User-ID"),
		PropertyID: c.GetHeader("X-Property-ID"),
	}
	if err := identity.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return state.Identity{}, false
	}
	return identity, true
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

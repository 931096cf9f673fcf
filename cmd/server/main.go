package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"kiroku/internal/auth"
	"kiroku/internal/config"
	"kiroku/internal/handler"
	"kiroku/internal/middleware"
	"kiroku/internal/repository/postgres"
	postgresNotes "kiroku/internal/repository/postgres/notes"
	serviceAssistant "kiroku/internal/service/assistant"
	serviceCredits "kiroku/internal/service/credits"
	serviceNotes "kiroku/internal/service/notes"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging. Debug defaults on in dev/test and can be
	// forced in prod via DEBUG=true.
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	var logWriter io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logWriter = io.MultiWriter(os.Stdout, logFile)
	}
	logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Database
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	noteRepo := postgresNotes.NewNoteRepository(repoConfig)
	versionRepo := postgresNotes.NewVersionRepository(repoConfig)
	creditRepo := postgres.NewCreditRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Services
	noteService := serviceNotes.NewNoteService(noteRepo, versionRepo, txManager, logger)
	categoryService := serviceNotes.NewCategoryService(noteRepo, txManager, logger)
	creditService := serviceCredits.NewCreditService(creditRepo, txManager, cfg.CreditsPerKiloToken, logger)
	assistantService := serviceAssistant.NewAssistantService(
		serviceAssistant.NewClient(cfg),
		noteRepo,
		creditService,
		cfg.ChatModel,
		logger,
	)

	// Handlers
	noteHandler := handler.NewNoteHandler(noteService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	creditHandler := handler.NewCreditHandler(creditService, logger)
	assistantHandler := handler.NewAssistantHandler(assistantService, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", noteHandler.HealthCheck)

	// Note routes
	mux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /api/notes", noteHandler.ListNotes)
	mux.HandleFunc("POST /api/notes/import", noteHandler.ImportNotes) // Must come before {id} route
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("PATCH /api/notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)

	// Version routes
	mux.HandleFunc("GET /api/notes/{id}/versions", noteHandler.ListVersions)
	mux.HandleFunc("GET /api/notes/{id}/versions/{versionId}/diff", noteHandler.DiffVersion)

	// Category routes
	mux.HandleFunc("GET /api/categories/tree", categoryHandler.GetTree)
	mux.HandleFunc("GET /api/categories/impact", categoryHandler.GetImpact)
	mux.HandleFunc("POST /api/categories/rename", categoryHandler.RenameCategory)
	mux.HandleFunc("POST /api/categories/move", categoryHandler.MoveCategory)
	mux.HandleFunc("DELETE /api/categories", categoryHandler.DeleteCategory)

	// Credit routes
	mux.HandleFunc("GET /api/credits/balance", creditHandler.GetBalance)
	mux.HandleFunc("POST /api/credits/grants", creditHandler.CreateGrant)
	mux.HandleFunc("GET /api/credits/usage", creditHandler.ListUsage)

	// Assistant routes
	mux.HandleFunc("POST /api/assistant/chat", assistantHandler.Chat)

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Serve until interrupted, then drain in-flight requests
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}

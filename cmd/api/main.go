package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fireto/receit-processor/internal/api/handlers"
	"github.com/fireto/receit-processor/internal/api/middleware"
	"github.com/fireto/receit-processor/internal/archive"
	"github.com/fireto/receit-processor/internal/config"
	"github.com/fireto/receit-processor/internal/domain"
	"github.com/fireto/receit-processor/internal/logger"
	"github.com/fireto/receit-processor/internal/qr"
	"github.com/fireto/receit-processor/internal/sheetsync"
	"github.com/fireto/receit-processor/internal/vision"
)

func main() {
	var (
		port = flag.String("port", "8080", "HTTP server port")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.AuthToken == "" {
		log.Warn().Msg("No AUTH_TOKEN configured - API is open")
	}

	ctx := context.Background()

	// The spreadsheet is the only system of record.
	store, err := sheetsync.NewGoogleSheetStore(ctx, cfg.ServiceAccountFile, cfg.SpreadsheetID, cfg.Worksheet)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheet store")
	}
	sync := sheetsync.New(store)

	registry := vision.NewRegistry(
		vision.NewClaude(cfg.AnthropicAPIKey),
		vision.NewGemini(cfg.GeminiAPIKey),
		vision.NewGrok(cfg.XAIAPIKey),
	)
	if !slices.Contains(registry.Names(), cfg.DefaultProvider) {
		log.Fatal().Str("provider", cfg.DefaultProvider).Msg("Unknown default vision provider")
	}

	var archiver handlers.Archiver
	if cfg.ArchiveBucket != "" {
		archiver = archive.NewUploader(cfg.ArchiveBucket)
		log.Info().Str("bucket", cfg.ArchiveBucket).Msg("Receipt image archival enabled")
	}

	// Initialize handlers
	receiptsHandler := handlers.NewReceiptsHandler(registry, sync, qr.Decode, archiver, cfg.DefaultProvider, log)
	configHandler := handlers.NewConfigHandler(registry.Names(), cfg.DefaultProvider)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/manual", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Manual(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/entry/", func(w http.ResponseWriter, r *http.Request) {
		rowStr := strings.TrimPrefix(r.URL.Path, "/api/entry/")
		row, err := strconv.ParseInt(rowStr, 10, 64)
		if err != nil || row < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid row number")
			return
		}
		handle := domain.Handle{Row: row}

		switch r.Method {
		case http.MethodPatch:
			receiptsHandler.Update(w, r, handle)
		case http.MethodDelete:
			receiptsHandler.Delete(w, r, handle)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			configHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.BearerAuth(cfg.AuthToken, log)(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

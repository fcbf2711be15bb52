// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/ketolab/go-ketoplanner/internal/config"
	"github.com/ketolab/go-ketoplanner/internal/domain"
	"github.com/ketolab/go-ketoplanner/internal/handlers"
	"github.com/ketolab/go-ketoplanner/internal/middleware"
	"github.com/ketolab/go-ketoplanner/internal/ratelimit"
	"github.com/ketolab/go-ketoplanner/internal/repository/message"
	"github.com/ketolab/go-ketoplanner/internal/repository/thread"
	"github.com/ketolab/go-ketoplanner/internal/services"
	"github.com/ketolab/go-ketoplanner/internal/services/ai"
	"github.com/ketolab/go-ketoplanner/internal/services/chat"
	"github.com/ketolab/go-ketoplanner/internal/services/conversation"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("go_ketoplanner")

	// Store initialization is the only process-fatal condition: without
	// the durable store the feature does not exist.
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Thread{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	threadRepo := thread.NewThreadRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	conversationService, err := conversation.NewService(threadRepo, messageRepo, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize conversation service: %v", err)
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.BaseURL = cfg.ModelBaseURL
	aiConfig.APIKey = cfg.ModelAPIKey
	aiConfig.Model = cfg.ModelName
	aiConfig.Timeout = cfg.ModelTimeout
	aiConfig.MaxRetries = cfg.ModelMaxRetries

	orchestrator, err := ai.NewOrchestrator(aiConfig, ai.NewOpenAIProvider(aiConfig), logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize completion orchestrator: %v", err)
	}

	controller, err := chat.NewController(conversationService, orchestrator, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize chat controller: %v", err)
	}

	// --- Handlers ---
	chatHandler := handlers.NewChatHandler(conversationService, controller)
	historyHandler := handlers.NewHistoryHandler(conversationService)

	completionLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultCompletionConfig())
	defer completionLimiter.Close()
	limitSend := middleware.RateLimitMiddleware(completionLimiter, "send")

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/threads", chatHandler.GetThreads).Methods("GET")
	api.HandleFunc("/threads", chatHandler.CreateThread).Methods("POST")
	api.HandleFunc("/threads/{id:[0-9]+}", chatHandler.RenameThread).Methods("PATCH")
	api.HandleFunc("/threads/{id:[0-9]+}", chatHandler.DeleteThread).Methods("DELETE")
	api.HandleFunc("/threads/{id:[0-9]+}/messages", chatHandler.GetThreadMessages).Methods("GET")
	api.Handle("/threads/{id:[0-9]+}/messages", limitSend(http.HandlerFunc(chatHandler.SendMessage))).Methods("POST")

	r.HandleFunc("/threads/{id:[0-9]+}/history", historyHandler.ShowThreadHistory).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // Completion calls can be slow on small hardware
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

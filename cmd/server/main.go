package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/auth"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/config"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/db"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/export"
	mw "github.com/adamnemecek/geometry-sketchpad/backend-go/internal/middleware"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/session"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/sketch"
)

// The playground sketch is open to anonymous users and never persisted.
const playgroundSketchID = "sketch_playground"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := db.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	sketchService := sketch.NewService(queries)
	sketchHandler := sketch.NewHandler(sketchService)

	docLoader := func(ctx context.Context, sketchID string) (*document.SketchDocument, error) {
		if sketchID == playgroundSketchID {
			return document.NewSampleDocument(sketchID), nil
		}
		return sketchService.LoadDocument(ctx, sketchID)
	}

	docSaver := func(ctx context.Context, sketchID string, doc *document.SketchDocument) error {
		if sketchID == playgroundSketchID {
			return nil
		}
		return sketchService.SaveDocument(ctx, sketchID, doc)
	}

	hub := session.NewHub(docLoader, docSaver)
	go hub.Run()

	// Periodic saves so a crash loses at most one interval of work
	go func() {
		ticker := time.NewTicker(cfg.SaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hub.SaveDirtyRooms(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	exportHandler := export.NewHandler()

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Auth routes
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.Handle("/auth/me", authService.AuthMiddleware(http.HandlerFunc(authHandler.Me))).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Export endpoint, public so the playground can use it too
	r.HandleFunc("/export/svg", exportHandler.ExportSVG).Methods("POST", "OPTIONS")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/sketches", sketchHandler.List).Methods("GET")
	api.HandleFunc("/sketches", sketchHandler.Create).Methods("POST")
	api.HandleFunc("/sketches/{sketchId}", sketchHandler.Get).Methods("GET")
	api.HandleFunc("/sketches/{sketchId}", sketchHandler.Delete).Methods("DELETE")
	api.HandleFunc("/sketches/{sketchId}/invite", sketchHandler.Invite).Methods("POST")
	api.HandleFunc("/sketches/{sketchId}/members", sketchHandler.ListMembers).Methods("GET")
	api.HandleFunc("/sketches/{sketchId}/members/{userId}", sketchHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/sketches/{sketchId}/snapshots/latest", sketchHandler.GetLatestSnapshot).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/sketch/{sketchId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, queries)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Persist open sketches before the connections drop
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
		hub.SaveDirtyRooms(saveCtx)
		saveCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *session.Hub, authSvc *auth.Service, queries *db.Queries) {
	vars := mux.Vars(r)
	sketchID := vars["sketchId"]

	var userID string
	var displayName string

	// Playground sketch allows anonymous access
	if sketchID == playgroundSketchID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		token := auth.TokenFromRequest(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
		displayName = claims.DisplayName

		// Check membership
		_, err = queries.GetSketchMember(r.Context(), db.GetSketchMemberParams{
			SketchID: sketchID,
			UserID:   userID,
		})
		if err != nil {
			http.Error(w, "not a sketch member", http.StatusForbidden)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:5173", "localhost:3000"},
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := session.NewClient(hub, conn, userID, displayName, sketchID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

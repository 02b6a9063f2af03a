// Package api provides the HTTP REST API server for MarketPulse.
//
// It serves the latest persisted sentiment report, a manual analysis
// trigger, a status endpoint, and WebSocket streaming of pipeline
// events. The serving layer is read-only over the report; all writes
// go through the pipeline runner.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rcamargo/marketpulse/internal/config"
	"github.com/rcamargo/marketpulse/internal/pipeline"
	"github.com/rcamargo/marketpulse/internal/store"
	"github.com/rcamargo/marketpulse/pkg/models"
)

// ReportLoader reads the last persisted report.
type ReportLoader interface {
	Load() (*models.Report, error)
}

// AnalysisTrigger starts pipeline runs and exposes scheduler state.
type AnalysisTrigger interface {
	TryRunAsync(ctx context.Context) error
	LastSuccess() (time.Time, bool)
	Interval() time.Duration
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	reports ReportLoader
	trigger AnalysisTrigger
	wsHub   *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reports ReportLoader, trigger AnalysisTrigger) *Server {
	srv := &Server{
		cfg:     cfg,
		reports: reports,
		trigger: trigger,
		wsHub:   NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub so the runner can broadcast events.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Latest sentiment report
		r.Get("/sentiment", s.handleSentiment)

		// Manual analysis trigger
		r.Post("/analyze", s.handleAnalyze)

		// Scheduler / data freshness status
		r.Get("/status", s.handleStatus)

		// Running configuration (read-only)
		r.Get("/config", s.handleGetConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StatusResponse is the body for GET /api/v1/status.
type StatusResponse struct {
	Status          string `json:"status"`
	LastUpdate      string `json:"last_update,omitempty"`
	LastSuccess     string `json:"last_success,omitempty"`
	IntervalMinutes int    `json:"interval_minutes"`
	NoData          bool   `json:"no_data,omitempty"`
}

// ConfigResponse is the body for GET /api/v1/config.
type ConfigResponse struct {
	Categories []config.Category  `json:"categories"`
	Provider   string             `json:"news_provider"`
	Classifier string             `json:"classifier_provider"`
	Keys       []config.KeyStatus `json:"keys"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": "dev",
			"time":    time.Now().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Load()
	if err != nil {
		if errors.Is(err, store.ErrNoReport) {
			writeError(w, http.StatusNotFound, "no data yet")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	// Deliberately detached from the request context: the run outlives
	// the HTTP request.
	if err := s.trigger.TryRunAsync(context.Background()); err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			writeError(w, http.StatusConflict, "analysis already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "analysis_started",
		Data: map[string]interface{}{
			"triggered_at": time.Now().Format(time.RFC3339),
		},
	})

	writeJSON(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "analysis started"},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:          "online",
		IntervalMinutes: int(s.trigger.Interval().Minutes()),
	}

	report, err := s.reports.Load()
	switch {
	case err == nil:
		resp.LastUpdate = report.Timestamp
	case errors.Is(err, store.ErrNoReport):
		resp.NoData = true
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if last, ok := s.trigger.LastSuccess(); ok {
		resp.LastSuccess = last.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// handleGetConfig returns the running configuration. API keys are
// reported masked, never raw.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Categories: s.cfg.Categories,
			Provider:   s.cfg.News.Provider,
			Classifier: s.cfg.Classifier.Provider,
			Keys:       config.CheckAPIKeys(s.cfg),
		},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}

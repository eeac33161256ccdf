package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hozondb/hozon-db/pkg/auth"
	"github.com/hozondb/hozon-db/pkg/database"
	gql "github.com/hozondb/hozon-db/pkg/graphql"
)

// Server exposes one database over HTTP
type Server struct {
	config    *Config
	db        *database.Database
	authMgr   *auth.Manager
	router    *chi.Mux
	httpSrv   *http.Server
	startTime time.Time
}

// New creates a server and opens its database file
func New(config *Config) (*Server, error) {
	db, err := database.Open(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	authMgr := auth.NewManager()
	for username, password := range config.Users {
		if err := authMgr.CreateUser(username, password); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register user %q: %w", username, err)
		}
	}

	srv := &Server{
		config:    config,
		db:        db,
		authMgr:   authMgr,
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}

	srv.setupMiddleware()
	srv.setupRoutes()
	if config.EnableGraphQL {
		if err := srv.setupGraphQLRoutes(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to setup GraphQL routes: %w", err)
		}
	}

	srv.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      srv.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv, nil
}

// setupMiddleware configures the HTTP middleware stack
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableLogging {
		s.router.Use(middleware.Logger)
	}
	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	s.router.Use(s.requestSizeLimitMiddleware)
	s.router.Use(s.authMgr.BasicAuth)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.Get("/_health", s.handleHealth)
	s.router.Get("/_tables", s.handleTables)
	s.router.Get("/_stats", s.handleStats)
	s.router.Get("/_backup", s.handleBackup)
	s.router.Post("/query", s.handleQuery)
	s.router.Get("/_ws/sql", s.handleStatementStream)
}

// setupGraphQLRoutes mounts the GraphQL endpoint
func (s *Server) setupGraphQLRoutes() error {
	handler, err := gql.NewHandler(s.db)
	if err != nil {
		return err
	}
	s.router.Post("/graphql", handler.ServeHTTP)
	return nil
}

// corsMiddleware handles CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestSizeLimitMiddleware limits request body size
func (s *Server) requestSizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// Start runs the server until an error or a shutdown signal
func (s *Server) Start() error {
	log.Printf("hozondb server starting on http://%s:%d", s.config.Host, s.config.Port)
	log.Printf("database file: %s", s.config.DatabasePath)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Printf("received signal: %v", sig)
		return s.Shutdown()
	}
}

// Router returns the server's HTTP handler, for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Database returns the server's database instance
func (s *Server) Database() *database.Database {
	return s.db
}

// Shutdown stops the HTTP server and closes the database
func (s *Server) Shutdown() error {
	log.Println("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	return s.db.Close()
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("error encoding JSON response: %v", err)
	}
}

// WriteError writes an error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"ok":      false,
		"message": message,
		"code":    statusCode,
	})
}

// WriteSuccess writes a success response
func WriteSuccess(w http.ResponseWriter, result interface{}) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"result": result,
	})
}

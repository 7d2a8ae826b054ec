package rest

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"classpulse/internal/service"
	"classpulse/internal/transport/rest/handler"
	"classpulse/internal/transport/rest/middleware"
	"classpulse/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	SessionService   *service.SessionService
	SnapshotService  *service.SnapshotService
	AnalyticsService *service.AnalyticsService
	ReportService    *service.ReportService
	WSHub            *ws.Hub
	WSHandler        *ws.Handler
	Started          time.Time
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	analyticsHandler := handler.NewAnalyticsHandler(c.SnapshotService, c.AnalyticsService)
	reportHandler := handler.NewReportHandler(c.ReportService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/live", c.WSHandler.LiveWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","uptime":%.0f}`, time.Since(c.Started).Seconds())
	}).Methods("GET")

	// Routes open to any authenticated role
	authRoutes := v1.NewRoute().Subrouter()
	authRoutes.Use(authMW.RequireAuth)

	authRoutes.HandleFunc("/analytics/events", analyticsHandler.AppendEvent).Methods("POST", "OPTIONS")
	authRoutes.HandleFunc("/attendance/snapshot", analyticsHandler.Attendance).Methods("POST", "OPTIONS")

	// Teacher routes
	teacherRoutes := v1.NewRoute().Subrouter()
	teacherRoutes.Use(authMW.RequireTeacher)

	teacherRoutes.HandleFunc("/sessions/start", sessionHandler.Start).Methods("POST", "OPTIONS")
	teacherRoutes.HandleFunc("/sessions/end", sessionHandler.End).Methods("POST", "OPTIONS")
	teacherRoutes.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/sessions/{id}/summary", analyticsHandler.Summary).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/sessions/{id}/leaderboard", analyticsHandler.Leaderboard).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/sessions/{id}/leaderboard/{studentId}", analyticsHandler.Rank).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/analytics/alert", analyticsHandler.Alert).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/reports/daily", reportHandler.Daily).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"classpulse/internal/cache"
	"classpulse/internal/config"
	"classpulse/internal/notifier"
	"classpulse/internal/repository"
	"classpulse/internal/service"
	"classpulse/internal/store"
	"classpulse/internal/transport/rest"
	"classpulse/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()
	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("classpulse")

	// Redis connection
	redisAddr := cfg.RedisURI
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Process-scoped state shared by every component
	st := store.New()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepo(db)
	eventRepo := repository.NewEventRepo(db)

	// Restore the durable copy into the store so a restart keeps closed
	// sessions in summaries and daily reports.
	if err := rehydrate(ctx, st, sessionRepo, eventRepo); err != nil {
		log.Fatal("Failed to restore state from MongoDB:", err)
	}

	// Initialize caches
	leaderboard := cache.NewLeaderboardCache(rdb)
	summaries := cache.NewSummaryCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg)
	sessionSvc := service.NewSessionService(st, sessionRepo)
	snapshotSvc := service.NewSnapshotService(st, eventRepo, leaderboard, summaries)
	analyticsSvc := service.NewAnalyticsService(st, summaries, leaderboard)
	reportSvc := service.NewReportService(st, analyticsSvc, notifier.New(cfg.SMTP))

	// Live broadcast hub
	wsHub := ws.NewHub()
	wsHandler := ws.NewHandler(wsHub, authSvc, st)
	log.Println("Live broadcast hub started")

	// Daily report scheduler, stopped at shutdown
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	service.NewScheduler(reportSvc, cfg.ReportHourUTC).Start(schedulerCtx)

	// Create router with container
	container := &rest.Container{
		AuthService:      authSvc,
		SessionService:   sessionSvc,
		SnapshotService:  snapshotSvc,
		AnalyticsService: analyticsSvc,
		ReportService:    reportSvc,
		WSHub:            wsHub,
		WSHandler:        wsHandler,
		Started:          time.Now(),
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/sessions/start")
		log.Println("  POST /v1/sessions/end")
		log.Println("  GET  /v1/sessions/{id}")
		log.Println("  GET  /v1/sessions/{id}/summary")
		log.Println("  GET  /v1/sessions/{id}/leaderboard")
		log.Println("  GET  /v1/sessions/{id}/leaderboard/{studentId}")
		log.Println("  POST /v1/analytics/events")
		log.Println("  GET  /v1/analytics/alert")
		log.Println("  POST /v1/attendance/snapshot")
		log.Println("  POST /v1/reports/daily")
		log.Println("  WS   /v1/ws/live")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopScheduler()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// rehydrate loads every persisted session and its event partition into the
// in-memory store. The live and attendance tables start empty; both cover
// only the current run.
func rehydrate(ctx context.Context, st *store.Store, sessions repository.SessionRepo, events repository.EventRepo) error {
	all, err := sessions.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, sess := range all {
		partition, err := events.ListBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if err := st.LoadSession(sess, partition); err != nil {
			return err
		}
	}
	if len(all) > 0 {
		log.Printf("Restored %d sessions from MongoDB", len(all))
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/warblerhq/warbler/internal/config"
	"github.com/warblerhq/warbler/internal/database"
	"github.com/warblerhq/warbler/internal/logger"
	"github.com/warblerhq/warbler/internal/monitoring"
	postgresrepo "github.com/warblerhq/warbler/internal/repository/postgres"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/transport/http/handlers"
	"github.com/warblerhq/warbler/internal/transport/http/middleware"
	"github.com/warblerhq/warbler/internal/transport/ws"
)

func main() {
	logger.Init()
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	followRepo := postgresrepo.NewFollowRepo(pool)
	likeRepo := postgresrepo.NewLikeRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, likeRepo, authService)
	followService := service.NewFollowService(followRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, followRepo, likeRepo)

	// WebSocket hub for the live follower feed
	hub := ws.NewHub()
	go hub.Run()
	messageService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, followService, messageService)
	messageHandler := handlers.NewMessageHandler(messageService)
	timelineHandler := handlers.NewTimelineHandler(messageService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/v1/users", userHandler.List)
	mux.HandleFunc("GET /api/v1/users/{id}", userHandler.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/messages", userHandler.Messages)
	mux.HandleFunc("GET /api/v1/messages/{id}", messageHandler.Get)

	// Personalized when authenticated, landing payload otherwise
	mux.Handle("GET /api/v1/timeline", optionalAuth(http.HandlerFunc(timelineHandler.Home)))

	// Protected - Users
	mux.Handle("GET /api/v1/users/{id}/following", auth(http.HandlerFunc(userHandler.Following)))
	mux.Handle("GET /api/v1/users/{id}/followers", auth(http.HandlerFunc(userHandler.Followers)))
	mux.Handle("GET /api/v1/users/{id}/likes", auth(http.HandlerFunc(userHandler.Likes)))
	mux.Handle("POST /api/v1/users/follow/{id}", auth(http.HandlerFunc(userHandler.Follow)))
	mux.Handle("POST /api/v1/users/stop-following/{id}", auth(http.HandlerFunc(userHandler.StopFollowing)))
	mux.Handle("GET /api/v1/users/profile", auth(http.HandlerFunc(userHandler.GetProfile)))
	mux.Handle("PATCH /api/v1/users/profile", auth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/users/delete", auth(http.HandlerFunc(userHandler.DeleteAccount)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Compose)))
	mux.Handle("POST /api/v1/messages/{id}/delete", auth(http.HandlerFunc(messageHandler.Delete)))
	mux.Handle("POST /api/v1/messages/{id}/like", auth(http.HandlerFunc(messageHandler.Like)))
	mux.Handle("POST /api/v1/messages/{id}/unlike", auth(http.HandlerFunc(messageHandler.Unlike)))

	// Live feed
	mux.Handle("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, followRepo))

	// Everything else is a JSON 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Not found"}}`))
	})

	handler := middleware.CORS(
		middleware.RequestID(
			middleware.Logging(
				middleware.NoCache(
					monitoring.InstrumentHandler(mux)))))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logrus.Infof("Starting server on %s", addr)
	logrus.Fatal(http.ListenAndServe(addr, handler))
}

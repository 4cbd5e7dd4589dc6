package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/events"
	"complaintdesk/backend/internal/evidence"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// Redis only backs the roster cache; run degraded without it.
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("WARNING: Redis unavailable, roster cache disabled: %v", err)
		rdb = nil
	}

	err = db.AutoMigrate(
		&models.Complaint{},
		&models.Admin{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connection established, migrations complete.")
	return db, rdb
}

func buildDispatcher(cfg *config.Config) notify.Dispatcher {
	var channels []notify.Dispatcher

	if cfg.EmailUser != "" {
		channels = append(channels, notify.NewMailer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass))
	} else {
		log.Println("WARNING: EMAIL_USER not set, email notifications disabled")
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChat != "" {
		tg, err := notify.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramAdminChat)
		if err != nil {
			log.Printf("WARNING: Telegram notifications disabled: %v", err)
		} else {
			channels = append(channels, tg)
		}
	}

	return notify.NewMulti(channels...)
}

func main() {
	log.Println("Starting ComplaintDesk Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	store, err := evidence.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	hub := events.NewHub()
	go hub.Run()

	svc := complaint.NewService(s, store, buildDispatcher(cfg), hub)
	h := handler.NewHandler(svc, s, hub, cfg.JWTSecret)

	r := gin.Default()
	r.Use(handler.CORS(cfg.AllowedOrigins))
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Login)

		api.POST("/complaints", h.CreateComplaint)
		api.GET("/complaints", h.RequireAdmin(), h.GetAllComplaints)
		api.GET("/complaints/:id", h.GetComplaintByID)
		api.PUT("/complaints/:id", h.RequireAdmin(), h.UpdateComplaintStatus)
		api.POST("/complaints/:id/feedback", h.SubmitFeedback)
	}

	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"meetgogo/backend/internal/api/handler"
	"meetgogo/backend/internal/backends"
	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/identity"
	"meetgogo/backend/internal/meetbot"
	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/storage"
	"meetgogo/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=user password=password dbname=meetgogodb port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Meeting{},
		&models.MeetingLog{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func loadConfig() *config.Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Warning: config file %s not found, using defaults", path)
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	log.Println("Starting MeetGoGo Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}

	cfg := loadConfig()

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewService(db, rdb)

	tags, err := meetbot.NewTagMatcher(cfg)
	if err != nil {
		log.Fatalf("Failed to compile tag pattern: %v", err)
	}

	// 2. Telegram bot and chat client
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set!")
	}
	botService, err := telegram.NewBotService(botToken)
	if err != nil {
		log.Fatalf("Failed to start the Telegram bot: %v", err)
	}
	chatClient := telegram.NewClient(botService.BotAPI)

	// 3. Backend publisher
	deps := backends.Deps{
		Chat:   chatClient,
		Config: cfg,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
		Bus:    &backends.RedisPublisher{Client: rdb},
	}
	if url := cfg.BackendData.Bus.IdentityURL; url != "" {
		deps.Resolver = identity.NewHTTPResolver(url, deps.HTTP)
	}
	backend, err := backends.New(cfg.Backend, deps)
	if err != nil {
		log.Fatalf("Failed to construct backend %q: %v", cfg.Backend, err)
	}
	log.Printf("Using backend %q", backend.Name())

	// 4. Meeting pipeline
	service := meetbot.NewService(s, chatClient, backend, cfg, tags)
	botService.SetRouter(meetbot.NewRouter(service))

	go botService.Run() // tg bot service

	// 5. Gin routing for the observer API
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "YOUR_ULTRA_SECRET_KEY_HERE"
	}
	r := gin.Default()
	h := handler.NewHandler(s, []byte(jwtSecret))

	r.GET("/token", h.GetToken)        // JWT for observers
	r.GET("/meetings", h.ListMeetings) // open sessions
	r.GET("/live", h.ServeLiveFeed)    // WebSocket upgrade

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}

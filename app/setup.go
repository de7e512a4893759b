package app

import (
	"context"
	"fmt"
	"os"

	"github.com/biosecret/todo-list/config"
	"github.com/biosecret/todo-list/database"
	"github.com/biosecret/todo-list/events"
	"github.com/biosecret/todo-list/handlers"
	"github.com/biosecret/todo-list/logger"
	"github.com/biosecret/todo-list/router"
	"github.com/biosecret/todo-list/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// SetupAndRunApp khởi động ứng dụng Fiber
func SetupAndRunApp() error {
	// Load cấu hình từ .env, file TOML và biến môi trường
	env, err := config.LoadENV()
	if err != nil {
		return err
	}

	logger.Init(env.LogLevel, env.Debug)

	ctx := context.Background()

	// Khởi động storage
	backend, err := database.Open(ctx, database.Config{
		Backend:      env.StoreBackend,
		PostgresURI:  env.PostgresURI,
		SQLitePath:   env.SQLitePath,
		GCPProjectID: env.GCPProjectID,
	})
	if err != nil {
		return err
	}

	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer backend.Close()

	hub := events.NewHub()
	var notifier store.Notifier = hub
	if env.MQTTURL != "" {
		broker, err := events.ConnectMQTT(env.MQTTURL, mqttClientID(), hub)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT: %w", err)
		}
		defer broker.Close()
		notifier = broker
	}

	todos := store.New(backend, backend, store.WithNotifier(notifier))
	h := handlers.New(todos, backend, hub, []byte(env.JWTSecret))

	app := NewFiberApp()
	router.SetupRoutes(app, h)

	// Đính kèm Swagger
	config.AddSwaggerRoutes(app, env)

	log.Info().Str("port", env.Port).Str("backend", env.StoreBackend).Msg("starting server")
	return app.Listen(":" + env.Port)
}

// NewFiberApp tạo ứng dụng Fiber với các middleware chung
func NewFiberApp() *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency}\n",
	}))

	return app
}

func mqttClientID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "local"
	}
	return fmt.Sprintf("%s-%s-%d", logger.ModuleID, host, os.Getpid())
}

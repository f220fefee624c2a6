package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/config"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/dependency_container"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/database"
	infraLogger "github.com/AgroMunicipal/CitizenAssistant/pkg/infra/logger"
	_ "github.com/AgroMunicipal/CitizenAssistant/pkg/infra/migrations"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/server"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/server/router"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/version"
	"github.com/joho/godotenv"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogs, err := infraLogger.NewLogger("assistant")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogs()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config"
	}
	if err := config.Load(configPath); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	var db *database.DB
	if strings.EqualFold(cfg.Assistant.SessionStore, config.StorePostgres) {
		db, err = database.NewDB(logger, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
	}

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize container: %v", err)
	}

	container.MetricsWorker.StartWorkers(cfg.Assistant.HookWorkers)
	container.Sweeper.Start()

	srv := server.NewAssistantServer(server.AssistantServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewAssistantRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
	})

	logger.WithField("version", version.Version).Info("starting citizen assistant")

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
	}
	container.Sweeper.Shutdown()
	container.MetricsWorker.Shutdown()
	fmt.Println("server gracefully stopped")
}

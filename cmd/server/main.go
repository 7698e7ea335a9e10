package main

import (
	"context"
	"errors"
	"medchat/internal/api"
	"medchat/internal/api/handlers"
	"medchat/internal/app"
	"medchat/internal/config"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"medchat/internal/repository/memory"
	"medchat/internal/repository/postgres"
	"medchat/internal/service/langdetect"
	"medchat/internal/service/llm"
	"medchat/internal/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, using process environment")
	}
	logger.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openStore(ctx, appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize store")
	}
	defer database.Close()

	var audioStore storage.AudioStore
	if appConfig.Storage.Enabled {
		s3Store, err := storage.NewS3AudioStore(appConfig.Storage)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to initialize audio storage")
		}
		audioStore = s3Store
	} else {
		logger.Log.Info("S3 audio storage is disabled; recordings are not kept")
	}

	cfg := app.NewConfig(database, appConfig)
	languageService := llm.NewGroqProvider(&appConfig.LLM, appConfig.Models)
	detector := langdetect.NewLinguaDetector()

	h := handlers.NewHandlers(cfg, languageService, detector, audioStore)

	server := &http.Server{
		Addr:         ":" + appConfig.Server.Port,
		Handler:      api.NewRouter(h),
		ReadTimeout:  appConfig.Server.ReadTimeout,
		WriteTimeout: appConfig.Server.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"port":         appConfig.Server.Port,
			"store":        appConfig.Database.Driver,
			"chat_model":   appConfig.Models.ModelForTask(config.TaskChat),
			"stt_model":    appConfig.Models.ModelForTask(config.TaskTranscription),
			"audio_stored": audioStore != nil,
		}).Info("Server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}

func openStore(ctx context.Context, dbConfig config.DatabaseConfig) (db.Database, error) {
	if dbConfig.Driver == config.StoreDriverMemory {
		logger.Log.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	}
	pg, err := postgres.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

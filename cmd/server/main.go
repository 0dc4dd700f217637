package main

import (
	"context"
	"errors"
	"investadvisor/server/config"
	"investadvisor/server/internal/api"
	"investadvisor/server/internal/database"
	"investadvisor/server/internal/locality"
	"investadvisor/server/internal/prediction"
	"investadvisor/server/internal/processor"
	"investadvisor/server/internal/queue"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	gin.SetMode(cfg.Server.GinMode)

	if cfg.Reference.ImportCSV != "" {
		dbPath := strings.TrimPrefix(cfg.Reference.Source, "sqlite:")
		count, err := locality.Import(cfg.Reference.ImportCSV, dbPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to import locality reference table")
		}
		logger.WithFields(logrus.Fields{
			"csv":      cfg.Reference.ImportCSV,
			"database": dbPath,
			"rows":     count,
		}).Info("Imported locality reference table")
	}

	// Load the locality reference table once; it is read-only afterwards
	reference, err := locality.Load(cfg.Reference.Source)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load locality reference table")
	}
	logger.WithFields(logrus.Fields{
		"source":        cfg.Reference.Source,
		"rows":          reference.Len(),
		"localities":    len(reference.Localities()),
		"global_median": reference.GlobalMedian(),
	}).Info("Loaded locality reference table")

	model, err := loadModel(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load models")
	}

	advisor := prediction.NewAdvisor(reference, model, cfg.Reference.Year, logger)

	// Optional prediction history
	var history api.HistoryReader
	var historyQueue *queue.PredictionQueue
	var batchProcessor *processor.BatchProcessor
	if cfg.History.DBPath != "" {
		store, err := database.NewHistoryStore(cfg.History.DBPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize history database")
		}
		defer store.Close()
		logger.Infof("Recording predictions to %s", cfg.History.DBPath)

		historyQueue = queue.NewPredictionQueue(cfg.BatchProcessing.QueueSize, logger)
		batchProcessor = processor.NewBatchProcessor(store.DB(), historyQueue, cfg, logger)
		batchProcessor.Start()
		historyQueue.Start()

		advisor.SetRecorder(historyQueue)
		history = store
	}

	handler := api.NewHandler(advisor, history, logger)
	router := api.NewRouter(handler, cfg.Server.CORSAllowedOrigins, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.WithField("signal", sig.String()).Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	if historyQueue != nil {
		historyQueue.Close()
		if err := batchProcessor.Stop(); err != nil {
			logger.WithError(err).Error("Failed to write remaining predictions")
		}
	}

	logger.Info("Server stopped")
}

func loadModel(cfg *config.Config, logger *logrus.Logger) (prediction.Model, error) {
	if cfg.Models.Backend == config.BackendRemote {
		timeout := time.Duration(cfg.Models.TimeoutSeconds) * time.Second
		remote := prediction.NewRemoteModel(cfg.Models.ServerURL, timeout, logger)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := remote.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Infof("Using model server at %s", cfg.Models.ServerURL)
		return remote, nil
	}

	model, err := prediction.LoadArtifacts(cfg.Models.ClassifierPath, cfg.Models.RegressorPath)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"classifier": cfg.Models.ClassifierPath,
		"regressor":  cfg.Models.RegressorPath,
	}).Info("Loaded model artifacts")
	return model, nil
}

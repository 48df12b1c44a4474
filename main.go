package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kube-rca/incident-bot/internal/client"
	"github.com/kube-rca/incident-bot/internal/config"
	"github.com/kube-rca/incident-bot/internal/db"
	"github.com/kube-rca/incident-bot/internal/handler"
	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/service"
	"github.com/kube-rca/incident-bot/internal/store"
	"github.com/kube-rca/incident-bot/internal/template"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env는 선택 사항 (없으면 무시)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.SetLogger(zap.NewExample())
		logging.Fatal("Invalid configuration", zap.Error(err))
	}

	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		logging.SetLogger(zap.NewExample())
		logging.Fatal("Failed to set up logging", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, warning := range cfg.Warnings() {
		logging.Warn(warning)
	}

	// 1. 로컬 레코드 파일
	records, err := store.New(cfg.AlertsFile(), cfg.HealingFile())
	if err != nil {
		logging.Fatal("Failed to open record store", zap.Error(err))
	}

	m := metrics.New()

	// 2. 외부 클라이언트 (설정이 없으면 해당 기능 비활성화)
	var (
		generator       service.Generator
		embeddingClient service.EmbeddingClient
	)
	if cfg.AIEnabled() {
		genaiClient, err := client.NewGenAIClient(ctx, cfg.GenAI)
		if err != nil {
			logging.Error("Failed to initialize Gemini client, AI suggestions disabled", zap.Error(err))
		} else {
			generator = genaiClient
			embeddingClient = genaiClient
		}
	}

	var objectStore service.ObjectStore
	if cfg.S3.Enabled() {
		s3Client, err := client.NewS3Client(ctx, cfg.S3)
		if err != nil {
			logging.Error("Failed to initialize S3 client, uploads disabled", zap.Error(err))
		} else {
			objectStore = s3Client
			logging.Info("S3 client initialized", zap.String("bucket", s3Client.Bucket()))
		}
	}

	messageTemplate, err := template.LoadTemplate(cfg.Slack.TemplateFile)
	if err != nil {
		logging.Fatal("Failed to load notification template", zap.Error(err))
	}

	// 3. 서비스 구성
	archiveService := service.NewArchiveService(objectStore, cfg.S3.Prefix, cfg.S3.UploadInterval, cfg.Log.File, records.Paths(), m)
	healingService := service.NewHealingService(cfg.Healing, service.DefaultRemediators(), records, m)
	alertService := service.NewAlertService(
		service.NewSuggestionService(generator, cfg.GenAI.Timeout, m),
		healingService,
		service.NewNotifyService(client.NewSlackClient(cfg.Slack), m),
		archiveService,
		records,
		messageTemplate,
		m,
	)
	historyService := service.NewHistoryService(records)
	var embeddingService *service.EmbeddingService

	// 4. Postgres 미러 (선택)
	if cfg.Postgres.Enabled() {
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logging.Error("Failed to connect to Postgres, continuing with local files only", zap.Error(err))
		} else {
			database := db.NewPostgres(pool)
			defer database.Close()
			if err := database.EnsureRecordSchema(ctx); err != nil {
				logging.Error("Failed to ensure record schema", zap.Error(err))
			} else {
				if embeddingClient != nil {
					embeddingService = service.NewEmbeddingService(database, embeddingClient)
				}
				alertService.SetMirror(database, embeddingService)
				healingService.SetMirror(database)
				historyService.SetDB(database)
				logging.Info("Postgres mirror enabled")
			}
		}
	}

	// 5. 라우터
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(generator != nil, cfg.Healing.Enabled)
	alertHandler := handler.NewAlertHandler(alertService)

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.POST("/alert", alertHandler.Webhook)
	router.POST("/webhook/alertmanager", alertHandler.Webhook)

	api := router.Group("/api/v1")
	api.GET("/alerts", handler.NewHistoryHandler(historyService).ListAlerts)
	api.GET("/alerts/:id/similar", handler.NewEmbeddingHandler(embeddingService).SimilarAlerts)

	// 6. S3 아카이빙 루프
	archiveDone := make(chan struct{})
	if archiveService.Enabled() {
		go func() {
			defer close(archiveDone)
			archiveService.Run(ctx)
		}()
	} else {
		close(archiveDone)
	}

	logging.Info("Starting AI-powered incident bot",
		zap.String("addr", cfg.Addr()),
		zap.Bool("ai_enabled", generator != nil),
		zap.Bool("self_healing_enabled", cfg.Healing.Enabled),
		zap.Float64("self_healing_threshold", cfg.Healing.Threshold),
		zap.Bool("s3_uploads_enabled", archiveService.Enabled()),
		zap.Bool("slack_enabled", cfg.Slack.WebhookURL != ""))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logging.Error("HTTP server failed", zap.Error(err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	<-archiveDone
	if err := archiveService.Wait(shutdownCtx); err != nil {
		logging.Warn("Pending alert uploads were not drained", zap.Error(err))
	}

	logging.Info("Incident bot stopped")
	if err := closeLog(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careernavigator/internal/api"
	"careernavigator/internal/auth"
	"careernavigator/internal/autosave"
	"careernavigator/internal/config"
	"careernavigator/internal/database"
	"careernavigator/internal/metrics"
	"careernavigator/internal/resume"
	"careernavigator/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	privateKey, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
	if err != nil {
		log.Fatalf("read private key: %v", err)
	}
	publicKey, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Fatalf("read public key: %v", err)
	}
	authService, err := auth.NewAuthService(privateKey, publicKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	autosaveController := autosave.NewController(cfg.Autosave.Debounce, newDraftSaver(db), logger)
	defer autosaveController.Close()

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, api.Dependencies{
		DB:          db,
		Config:      cfg,
		AuthService: authService,
		Redis:       redisClient,
		AsynqClient: asynqClient,
		Storage:     storageClient,
		Autosave:    autosaveController,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: router,
	}

	go func() {
		log.Printf("api listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start api server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down api server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
}

// newDraftSaver 返回自动保存控制器使用的落库函数：
// 按 profile_id 冲突键 upsert，评分随草稿重算。
func newDraftSaver(db *gorm.DB) autosave.SaveFunc {
	return func(ctx context.Context, profileID uint, data resume.Data) error {
		row := database.Resume{ProfileID: profileID}
		if err := resume.Encode(data, &row); err != nil {
			metrics.ObserveAutosaveFlush(false)
			return err
		}

		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "profile_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"full_name", "email", "phone", "location", "summary",
					"experience", "education", "skills", "projects",
					"certifications", "languages", "resume_score", "updated_at",
				}),
			}).
			Create(&row).Error
		metrics.ObserveAutosaveFlush(err == nil)
		return err
	}
}

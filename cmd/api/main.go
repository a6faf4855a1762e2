package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pathway-api/internal/config"
	"github.com/noah-isme/pathway-api/internal/database"
	"github.com/noah-isme/pathway-api/internal/editor"
	"github.com/noah-isme/pathway-api/internal/handler"
	"github.com/noah-isme/pathway-api/internal/middleware"
	"github.com/noah-isme/pathway-api/internal/models"
	"github.com/noah-isme/pathway-api/internal/notify"
	"github.com/noah-isme/pathway-api/internal/repository"
	"github.com/noah-isme/pathway-api/internal/router"
	"github.com/noah-isme/pathway-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.LearningPath{},
		&models.Tag{},
		&models.Topic{},
		&models.Lesson{},
		&models.Note{},
		&models.Resource{},
		&models.LessonProgress{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	pathRepo := repository.NewLearningPathRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	tagRepo := repository.NewTagRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	pathService := service.NewPathService(pathRepo, topicRepo, lessonRepo, noteRepo, resourceRepo, tagRepo, redisClient, cfg.StatisticCacheTTL, validate, logger)
	topicService := service.NewTopicService(topicRepo, lessonRepo, noteRepo, redisClient, validate, logger)
	lessonService := service.NewLessonService(lessonRepo, topicRepo, redisClient, validate, logger)
	noteService := service.NewNoteService(noteRepo, validate, logger)
	resourceService := service.NewResourceService(resourceRepo, lessonRepo, validate, logger)
	tagService := service.NewTagService(tagRepo, validate, logger)
	progressService := service.NewProgressService(lessonRepo, topicRepo, pathRepo, progressRepo, redisClient, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)

	sessionManager := editor.NewManager(editor.API{
		Path:     pathService,
		Topic:    topicService,
		Lesson:   lessonService,
		Progress: progressService,
	}, logger)

	feedManager := notify.NewManager(notificationService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		LearningPathHandler: handler.NewLearningPathHandler(pathService, logger),
		EditorHandler:       handler.NewEditorHandler(sessionManager, logger),
		NoteHandler:         handler.NewNoteHandler(noteService, logger),
		ResourceHandler:     handler.NewResourceHandler(resourceService, logger),
		TagHandler:          handler.NewTagHandler(tagService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, feedManager, logger, cfg.StreamKeepAlive),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/api/handlers"
	"github.com/arlochter/slotflow/internal/api/middleware"
	job "github.com/arlochter/slotflow/internal/jobs"
	"github.com/arlochter/slotflow/internal/publisher"
	"github.com/arlochter/slotflow/internal/queue"
	"github.com/arlochter/slotflow/internal/repository"
	"github.com/arlochter/slotflow/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	contentRepo := repository.NewContentRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	historyRepo := repository.NewUploadHistoryRepository(db)

	pub := publisher.NewHTTPPublisher(cfg.Publisher)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)
	storageService := service.NewStorageService(*cfg)
	profileService := service.NewProfileService(*cfg, profileRepo, slotRepo, occurrenceRepo, contentRepo)
	contentService := service.NewContentService(db, contentRepo, profileRepo, slotRepo, occurrenceRepo, storageService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	profile := handlers.NewProfileHandler(profileService)
	api.Post("/profiles/connect", profile.ConnectProfile)
	api.Get("/profiles", profile.ListProfiles)
	api.Post("/profiles/remove", profile.DeleteProfile)
	api.Post("/slots/new", profile.AddSlot)
	api.Get("/slots", profile.ListSlots)
	api.Post("/slots/active", profile.SetSlotActive)
	api.Post("/slots/remove", profile.RemoveSlot)

	content := handlers.NewContentHandler(contentService, client)
	api.Post("/contents/upload", content.UploadContent)
	api.Get("/contents", content.ListContents)
	api.Post("/contents/assign", content.AssignContent)
	api.Post("/contents/schedule", content.ScheduleContent)
	api.Post("/contents/unschedule", content.UnscheduleContent)
	api.Post("/contents/revert", content.RevertContent)
	api.Post("/contents/remove", content.RemoveContent)
	api.Post("/contents/restore", content.RestoreContent)

	history := handlers.NewHistoryHandler(historyRepo)
	api.Get("/history", history.ListHistory)

	// cron jobs
	reconcileJob := job.NewReconcileJob(contentRepo, occurrenceRepo, historyRepo, pub)
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, profileRepo)

	// queue
	queueW := queue.NewQueue(*cfg, contentRepo, profileRepo, historyRepo, pub)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", reconcileJob.Run)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishContent, queueW.HandlePublishContentTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}

package main

import (
	"context"
	"internhub/config"
	authController "internhub/controllers/auth"
	internshipController "internhub/controllers/internship"
	"internhub/database"
	"internhub/repository"
	"internhub/routers/authRoutes"
	"internhub/routers/internshipRoutes"
	"internhub/services"
	"internhub/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	db := database.Database.Db

	users := repository.NewUserRepository(db)
	sectors := repository.NewSectorRepository(db)
	activity := services.NewActivityService(repository.NewActivityLogRepository(db))

	notifiers := services.MultiNotifier{
		utils.NewEmailNotifier(utils.NewMailerFromConfig(cfg), users, cfg.FrontendURL, cfg.EmailSenderName),
	}
	if cfg.NotifyWebhookURL != "" {
		notifiers = append(notifiers, utils.NewWebhookNotifier(cfg.NotifyWebhookURL, 10*time.Second))
	}

	internships := services.NewInternshipService(
		repository.NewInternshipRepository(db), users, sectors, notifiers, activity,
		services.Options{BulkWorkers: cfg.BulkWorkers},
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes.SetupAuthRoutes(app, authController.New(services.NewAuthService(users, cfg.SaltRound, activity), users))
	internshipRoutes.SetupInternshipRoutes(app,
		internshipController.New(internships, services.NewSectorService(sectors, users, activity), activity),
		cfg.BulkRatePerMinute)

	var scheduler *cron.Cron
	if cfg.SchedulerEnabled {
		scheduler = utils.InitializeLifecycleScheduler(internships, time.Duration(cfg.UnclaimedReminderDays)*24*time.Hour)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	var serveErr error
	select {
	case serveErr = <-listenErr:
		log.Printf("Server stopped: %v", serveErr)
	case <-ctx.Done():
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}

	if scheduler != nil {
		utils.StopLifecycleScheduler(scheduler, 30*time.Second)
	}
	if serveErr != nil {
		os.Exit(1)
	}
}

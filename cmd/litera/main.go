package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/litera-app/litera/app/controllers"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/cache"
	"github.com/litera-app/litera/internal/pkg/database"
	"github.com/litera-app/litera/internal/pkg/env"
	"github.com/litera-app/litera/internal/pkg/extract"
	"github.com/litera-app/litera/internal/pkg/jobqueue"
	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/payment"
	"github.com/litera-app/litera/internal/pkg/paypal"
	"github.com/litera-app/litera/internal/pkg/router"
	"github.com/litera-app/litera/internal/pkg/storage"
	"github.com/litera-app/litera/internal/pkg/translation"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	store, err := storage.NewLocalStoreFromEnv()
	if err != nil {
		log.Fatalf("storage setup failed: %v", err)
	}

	ledgerService := ledger.NewService(repos.Balance)

	queue := jobqueue.NewQueue(3)

	translationService := translation.NewService(
		repos.Book,
		repos.Job,
		ledgerService,
		store,
		extract.NewFileExtractor(),
		queue,
		translation.NewHTTPEngineFromEnv(),
	)
	queue.SetTranslationRunner(translationService)

	backupProcessor, err := jobqueue.NewBackupProcessor(repos.Book)
	if err != nil {
		log.Fatalf("backup setup failed: %v", err)
	}
	if backupProcessor != nil {
		queue.SetBackupProcessor(backupProcessor)
	}

	paymentService := payment.NewService(repos.Payment, ledgerService, paypal.NewClient(paypal.LoadConfig()))

	queue.Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 104857600, // 100 MiB, whole books come through here
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(
		repos.User,
		controllers.NewAuthController(repos.User, ledgerService),
		controllers.NewTranslationController(translationService),
		controllers.NewPaymentController(paymentService),
	))

	return app
}

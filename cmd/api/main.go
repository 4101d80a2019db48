package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appown "github.com/jhoicas/Joyeria-api/internal/application/ownership"
	domown "github.com/jhoicas/Joyeria-api/internal/domain/ownership"
	"github.com/jhoicas/Joyeria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Joyeria-api/internal/interfaces/http"
	"github.com/jhoicas/Joyeria-api/pkg/config"
	"github.com/jhoicas/Joyeria-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	recordRepo := postgres.NewOwnershipRecordRepository(pool)
	movementRepo := postgres.NewOwnershipMovementRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	policy := domown.StaticPolicy{
		LowThreshold:     cfg.Ownership.LowThreshold,
		HighThreshold:    cfg.Ownership.HighThreshold,
		CriticalLevel:    cfg.Ownership.CriticalThreshold,
		BlockSales:       cfg.Ownership.BlockSaleBelowThreshold,
		ConfirmPayments:  cfg.Ownership.RequirePaymentConfirmation,
		CheckTransfers:   cfg.Ownership.ValidateTransfers,
		CheckAdjustments: cfg.Ownership.ValidateInventoryAdjusts,
	}

	ownershipSvc := appown.NewService(txRunner, recordRepo, productRepo, branchRepo, policy, cfg.Ownership.MaxRetries)
	consolidateUC := appown.NewConsolidateUseCase(txRunner, recordRepo, cfg.Ownership.MaxRetries)
	queries := appown.NewQueries(recordRepo, movementRepo, policy)

	// Consolidación periódica; cron vacío la desactiva.
	if cfg.Ownership.ConsolidationCron != "" {
		scheduler := appown.NewConsolidationScheduler(consolidateUC, log, cfg.Ownership.ConsolidationCron)
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("programar consolidación periódica")
		}
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Joyería POS Ownership API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		OwnershipSvc:  ownershipSvc,
		ConsolidateUC: consolidateUC,
		Queries:       queries,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

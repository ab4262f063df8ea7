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
	"github.com/jhoicas/avicola-api/internal/application/ledger"
	"github.com/jhoicas/avicola-api/internal/application/traceability"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
	"github.com/jhoicas/avicola-api/internal/infrastructure/memory"
	"github.com/jhoicas/avicola-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/avicola-api/internal/interfaces/http"
	"github.com/jhoicas/avicola-api/pkg/config"
	"github.com/jhoicas/avicola-api/pkg/logger"
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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var txRunner ledger.TxRunner
	var movRepo repository.MovementRepository
	var invRepo repository.InventoryRecordRepository
	var histRepo repository.HistoryRepository

	if cfg.App.Storage == "memory" {
		// Sin persistencia: útil para demos y pruebas locales sin PostgreSQL.
		store := memory.NewStore()
		txRunner = memory.NewTxRunner(store)
		movRepo = memory.NewMovementRepository(store)
		invRepo = memory.NewInventoryRecordRepository(store)
		histRepo = memory.NewHistoryRepository(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")

		txRunner = postgres.NewTxRunner(pool)
		movRepo = postgres.NewMovementRepository(pool)
		invRepo = postgres.NewInventoryRecordRepository(pool)
		histRepo = postgres.NewHistoryRepository(pool)
	}

	ledgerUC := ledger.New(txRunner, movRepo, invRepo, histRepo)
	traceUC := traceability.New(histRepo, invRepo)

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
		Title:    "Avícola API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:       ledgerUC,
		TraceabilityUC: traceUC,
		JWTSecret:      cfg.JWT.Secret,
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

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

	appcosting "github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/infrastructure/postgres"
	"github.com/jhoicas/costing-engine/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/costing-engine/internal/interfaces/http"
	"github.com/jhoicas/costing-engine/pkg/config"
	"github.com/jhoicas/costing-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando motor de costeo")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	rdb, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	txRunner := postgres.NewTxRunner(pool)
	locker := redislock.NewLocker(rdb)

	settingRepo := postgres.NewValuationSettingRepository(pool)
	standardRepo := postgres.NewStandardCostRepository(pool)
	layerRepo := postgres.NewValuationLayerRepository(pool)
	averageRepo := postgres.NewRunningAverageRepository(pool)
	entryRepo := postgres.NewValuationEntryRepository(pool)
	landedCostRepo := postgres.NewLandedCostRepository(pool)

	resolver := appcosting.NewMethodResolver(settingRepo)
	movementsUC := appcosting.NewApplyMovementUseCase(txRunner, locker, resolver)
	landedCostUC := appcosting.NewLandedCostUseCase(txRunner, locker, landedCostRepo)
	settingsUC := appcosting.NewSettingsUseCase(settingRepo, standardRepo)
	queriesUC := appcosting.NewValuationQueryUseCase(resolver, layerRepo, averageRepo, entryRepo)

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
		Title:    "Costing Engine API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:  movementsUC,
		Queries:    queriesUC,
		LandedCost: landedCostUC,
		Settings:   settingsUC,
		JWTSecret:  cfg.JWT.Secret,
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

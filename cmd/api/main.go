package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Prebatch-api/internal/application/auth"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
	"github.com/jhoicas/Prebatch-api/internal/domain/repository"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/memory"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Prebatch-api/internal/infrastructure/scalebus"
	httpRouter "github.com/jhoicas/Prebatch-api/internal/interfaces/http"
	"github.com/jhoicas/Prebatch-api/pkg/config"
	"github.com/jhoicas/Prebatch-api/pkg/logger"
)

// repos agrupa los puertos de persistencia del backend elegido.
type repos struct {
	lots         repository.LotRepository
	requirements repository.RequirementRepository
	records      repository.RecordRepository
	batches      repository.BatchRepository
	users        repository.UserRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("scale_source", cfg.Scale.Source).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer store.close()

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Store.Driver == "memory" {
		seedDemoUser(ctx, log, authUC)
	}

	recorder := metrics.NewPrometheus()
	scales := prebatch.NewScaleRouter(prebatch.DefaultScales(),
		prebatch.WithWatchdogWindow(cfg.Scale.WatchdogWindow()),
		prebatch.WithRecorder(recorder),
		prebatch.WithLogger(log.Component("scales")),
	)
	defer scales.Close()

	ledger := prebatch.NewLotLedger(store.lots)
	sessions := prebatch.NewSessionManager(prebatch.SessionDeps{
		Ledger:       ledger,
		Scales:       scales,
		Requirements: store.requirements,
		Records:      store.records,
		Batches:      store.batches,
		Verifier:     authUC,
		Recorder:     recorder,
		Logger:       log.Component("session"),
		Clock:        time.Now,
	})

	if src := newScaleSource(ctx, cfg, log); src != nil {
		readings := make(chan entity.ScaleReading, 64)
		go func() {
			if err := src.Run(ctx, readings); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("fuente de balanzas finalizada")
			}
		}()
		go func() { _ = scales.Run(ctx, readings) }()
		defer src.Close()
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
		Title:    "Pre-batch API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": sessions.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Sessions:    sessions,
		Ledger:      ledger,
		Scales:      scales,
		Plans:       prebatch.NewPlanUseCase(store.batches, store.requirements),
		Metrics:     recorder.Handler(),
		MetricsPath: cfg.HTTP.MetricsPath,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStore(ctx context.Context, cfg *config.Config) (*repos, error) {
	if cfg.Store.Driver == "memory" {
		s := memory.NewDemoStore(time.Now())
		return &repos{
			lots:         s.Lots,
			requirements: s.Requirements,
			records:      s.Records,
			batches:      s.Batches,
			users:        s.Users,
			close:        func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &repos{
		lots:         postgres.NewLotRepository(pool),
		requirements: postgres.NewRequirementRepository(pool),
		records:      postgres.NewRecordRepository(pool, postgres.NewTxRunner(pool)),
		batches:      postgres.NewBatchRepository(pool),
		users:        postgres.NewUserRepository(pool),
		close:        pool.Close,
	}, nil
}

// newScaleSource devuelve nil con SCALE_SOURCE=none; las lecturas llegan entonces por HTTP.
func newScaleSource(ctx context.Context, cfg *config.Config, log *logger.Logger) scalebus.Source {
	switch cfg.Scale.Source {
	case "redis":
		client, err := scalebus.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		return scalebus.NewRedisSource(client, cfg.Scale.ChannelPattern, log.Component("scalebus"))
	case "kafka":
		return scalebus.NewKafkaSource(scalebus.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ScaleTopic,
			GroupID: cfg.Kafka.GroupID,
		}, log.Component("scalebus"))
	default:
		return nil
	}
}

// seedDemoUser crea el operador de demostración del store en memoria.
func seedDemoUser(ctx context.Context, log *logger.Logger, uc *auth.AuthUseCase) {
	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "operador123"
	}
	_, err := uc.RegisterUser(ctx, "operador", password, "Operador demo", entity.RoleOperator)
	if err != nil && !errors.Is(err, domain.ErrDuplicate) {
		log.Error().Err(err).Msg("crear usuario demo")
		return
	}
	_, err = uc.RegisterUser(ctx, "admin", password, "Administrador demo", entity.RoleAdmin)
	if err != nil && !errors.Is(err, domain.ErrDuplicate) {
		log.Error().Err(err).Msg("crear admin demo")
		return
	}
	log.Info().Str("usuario", "operador").Msg("usuarios demo creados")
}

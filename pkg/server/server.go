// Package server wires the service together: config, logging, database,
// Kafka, the verification engine, and the HTTP API.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/sage/config"
	findingrepo "github.com/Ramsey-B/sage/internal/repositories/finding"
	rulerepo "github.com/Ramsey-B/sage/internal/repositories/rule"
	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/engine"
	"github.com/Ramsey-B/sage/pkg/events"
	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/logger"
	"github.com/Ramsey-B/sage/pkg/middleware"
	"github.com/Ramsey-B/sage/pkg/processor"
	healthroute "github.com/Ramsey-B/sage/pkg/routes/health"
	ruleroute "github.com/Ramsey-B/sage/pkg/routes/rule"
	verificationroute "github.com/Ramsey-B/sage/pkg/routes/verification"
	"github.com/Ramsey-B/sage/pkg/tracing"
	"github.com/Ramsey-B/sage/pkg/tracing/exporters"
)

// Version is set at build time
var Version = "dev"

// LoadConfig reads the service config from the environment. A .env file
// is applied first when present, so local runs need no exported vars.
func LoadConfig() (config.Config, error) {
	_ = godotenv.Load()

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// Server is the assembled service
type Server struct {
	cfg      config.Config
	logger   ectologger.Logger
	echo     *echo.Echo
	db       *sqlx.DB
	consumer *kafka.Consumer
	producer *kafka.Producer
	health   *healthroute.Checker
}

// New assembles the service from config
func New(cfg config.Config) (*Server, error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	setupTracing(cfg)

	sqlxDB, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	db := database.NewDatabaseInstance(sqlxDB, log)

	migrations := database.NewMigrationService(log, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := runMigrations(sqlxDB, cfg, migrations); err != nil {
		return nil, err
	}

	ruleRepository := rulerepo.NewRepository(db, log)
	findingRepository := findingrepo.NewRepository(db, log)

	eng := engine.NewEngine(log, engine.Config{
		FuzzyNameThreshold:      cfg.FuzzyNameThreshold,
		EvidenceThreshold:       cfg.EvidenceThreshold,
		EvidenceToleranceMonths: cfg.EvidenceToleranceMonths,
		LookbackYears:           cfg.LookbackYears,
	})

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, log)
	emitter := events.NewEmitter(producer, log)

	proc := processor.NewProcessor(log, ruleRepository, findingRepository, eng, emitter)

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(cfg, log, proc.HandleMessage)
	}

	if err := registerDependencies(log, ruleRepository, findingRepository, proc); err != nil {
		return nil, err
	}

	// A disabled consumer must reach the checker as a true nil interface,
	// not a typed nil pointer
	var kafkaHealth interface{ Health() bool }
	if consumer != nil {
		kafkaHealth = consumer
	}
	health := healthroute.NewChecker(sqlxDB, kafkaHealth, Version)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(log)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	health.RegisterRoutes(e)
	api := e.Group("/api/v1")
	ruleroute.Register(api.Group("/rules"))
	verificationroute.Register(api.Group("/verification"))

	return &Server{
		cfg:      cfg,
		logger:   log,
		echo:     e,
		db:       sqlxDB,
		consumer: consumer,
		producer: producer,
		health:   health,
	}, nil
}

// Start runs the consumer and the HTTP listener. Blocks until the
// listener exits.
func (s *Server) Start(ctx context.Context) error {
	if s.consumer != nil {
		if err := s.consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start consumer: %w", err)
		}
	}
	s.health.SetReady(true)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.WithContext(ctx).WithFields(map[string]any{"addr": addr}).Info("Starting HTTP server")
	return s.echo.Start(addr)
}

// Shutdown stops the consumer, the HTTP listener, and closes shared
// resources
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)

	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to stop consumer cleanly")
		}
	}
	if err := s.producer.Close(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to close producer cleanly")
	}
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.db.Close()
}

func connectDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	db, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	return db, nil
}

func runMigrations(db *sqlx.DB, cfg config.Config, ms *database.MigrationService) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	return ms.Migrate(cfg.DatabaseName, driver)
}

// setupTracing installs a tracer provider so spans started throughout
// the service are recorded. The console exporter is a no-op sink; a
// collector-backed exporter can replace it without touching callers.
func setupTracing(cfg config.Config) {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&exporters.ConsoleExporter{}),
	)
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))
}

// registerDependencies exposes shared instances to the route handlers
func registerDependencies(
	log ectologger.Logger,
	ruleRepository *rulerepo.Repository,
	findingRepository *findingrepo.Repository,
	proc *processor.Processor,
) error {
	container, err := ectoinject.NewDIContainer(ectoinject.DefaultContainerConfig)
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, log); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*rulerepo.Repository](container, ruleRepository); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*findingrepo.Repository](container, findingRepository); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*processor.Processor](container, proc); err != nil {
		return err
	}
	return nil
}

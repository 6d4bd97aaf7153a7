package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"wagate/internal/broker"
	"wagate/internal/classify"
	"wagate/internal/config"
	"wagate/internal/constants"
	"wagate/internal/dispatch"
	"wagate/internal/logger"
	"wagate/internal/messagelog"
	"wagate/internal/webhook"
	"wagate/pkg/bootstrap"
	"wagate/pkg/cel"
	"wagate/pkg/health"
	"wagate/pkg/metrics"
	"wagate/pkg/migrations"
	"wagate/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	mongoClient    *mongo.Client
	service        *dispatch.Service
	server         *http.Server
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceNameDispatch)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker(constants.ServiceNameDispatch); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initService(); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	metrics.RegisterDispatchMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.Webhook.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceNameDispatch)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.db != nil && a.Config.Database.RunMigrations {
		path := a.Config.Database.MigrationsPath
		if path == "" {
			path = constants.DefaultMigrationsPath
		}
		if err := migrations.RunPostgres(a.db, path); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		return err
	}
	if mongoClient == nil {
		return fmt.Errorf("mongodb is required for the message log")
	}
	a.mongoClient = mongoClient

	dbName := a.Config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	if err := migrations.EnsureMessageLogCollection(initCtx, mongoClient.Database(dbName)); err != nil {
		return fmt.Errorf("failed to prepare message log collection: %w", err)
	}

	return nil
}

func (a *App) initService() error {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("failed to create filter evaluator: %w", err)
	}

	webhookRepo := webhook.NewRepository(a.db)
	webhookSender := webhook.NewHTTPSender(a.Config.Webhook, a.Logger)
	webhookService := webhook.NewService(webhookRepo, webhookSender, evaluator, a.Logger)

	dbName := a.Config.Database.MongoDB.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDBName
	}
	history := messagelog.NewRepository(a.mongoClient.Database(dbName))

	classifier := classify.Classifier{PreferMediaURL: a.Config.Gateway.PreferMediaURL}
	processedTopic := a.Config.Broker.Kafka.ProcessedTopic
	if processedTopic == "" {
		processedTopic = constants.DefaultProcessedTopic
	}

	a.service = dispatch.NewService(classifier, a.Producer, history, webhookService, processedTopic, a.Logger)
	return nil
}

func (a *App) initHTTPServer() error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	if len(a.Config.Broker.Kafka.Brokers) > 0 {
		healthRegistry.Register(health.NewKafkaChecker(a.Config.Broker.Kafka.Brokers[0]))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	inboundTopic := a.Config.Broker.Kafka.InboundTopic
	if inboundTopic == "" {
		inboundTopic = constants.DefaultInboundTopic
	}

	g.Go(func() error {
		return a.Consumer.Consume(gCtx, inboundTopic, a.service.Handle)
	})

	// Additional workers join the same consumer group and split partitions
	// between them.
	for i := 1; i < a.Config.Dispatch.Workers; i++ {
		consumer, err := broker.NewConsumer(a.Config.Broker, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create worker consumer: %w", err)
		}
		consumer.SetServiceName(constants.ServiceNameDispatch)
		worker := consumer
		g.Go(func() error {
			defer worker.Close()
			return worker.Consume(gCtx, inboundTopic, a.service.Handle)
		})
	}

	err := g.Wait()

	if shutdownErr := a.shutdown(context.Background()); shutdownErr != nil {
		a.Logger.Errorw("Shutdown error", "error", shutdownErr)
	}

	return err
}

func (a *App) shutdown(ctx context.Context) error {
	return a.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, nil, a.db, a.mongoClient)...)
		return errs
	})
}

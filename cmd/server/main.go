package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/ambition_store/internal/config"
	"github.com/Skotchmaster/ambition_store/internal/httpserver"
	"github.com/Skotchmaster/ambition_store/internal/jobs"
	"github.com/Skotchmaster/ambition_store/internal/mailer"
	"github.com/Skotchmaster/ambition_store/internal/metrics"
	"github.com/Skotchmaster/ambition_store/internal/migrations"
	"github.com/Skotchmaster/ambition_store/internal/mykafka"
	"github.com/Skotchmaster/ambition_store/internal/repo"
	"github.com/Skotchmaster/ambition_store/internal/search"
	"github.com/Skotchmaster/ambition_store/internal/service"
	"github.com/Skotchmaster/ambition_store/internal/session"
	pkgdb "github.com/Skotchmaster/ambition_store/pkg/db"
	"github.com/Skotchmaster/ambition_store/pkg/logging"
	loggingmw "github.com/Skotchmaster/ambition_store/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "ambition_store")
	slog.SetDefault(logger)

	if cfg.DBDriver == pkgdb.DriverPostgres && !cfg.AutoMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	openCtx, openCancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	openCancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := &repo.GormRepo{DB: db}
	if cfg.AutoMigrate || cfg.DBDriver == pkgdb.DriverSQLite {
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
	}
	if err := r.SeedOrderStatuses(context.Background()); err != nil {
		log.Fatalf("seed order statuses: %v", err)
	}

	var store session.Store = &session.GormStore{Repo: r}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		store = session.NewRedisStore(rdb)
		logger.Info("session_store", "backend", "redis", "addr", cfg.RedisAddr)
	}
	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL, store)

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTP(cfg.SMTP)
	}

	var producer mykafka.Publisher = mykafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	}

	catalog := &service.CatalogService{Repo: r, Producer: producer}
	if cfg.Search.URL != "" {
		client, err := search.NewClient(cfg.Search)
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			catalog.Index = search.NewESIndex(client, cfg.Search.Index)
		}
	}

	email := &service.EmailService{Repo: r, Mailer: mail, TTL: cfg.EmailCodeTTL}
	auth := &service.AuthService{Repo: r, Email: email, Sessions: sessions, Producer: producer}
	orders := &service.OrderService{Repo: r, Producer: producer}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: auth},
		EmailHandler:    &httpserver.EmailHTTP{Svc: email},
		ProductHandler:  &httpserver.ProductHTTP{Svc: catalog},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: catalog},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders},
		Tokens:          sessions,
		Ready:           r.Ping,
		ValidationRate:  cfg.ValidationRate,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	purger := &jobs.Purger{Repo: r, CodeTTL: cfg.EmailCodeTTL}
	scheduler, err := jobs.Start(logging.IntoContext(ctx, logger), cfg.PurgeSchedule, purger)
	if err != nil {
		log.Fatalf("purge schedule: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		<-scheduler.Stop().Done()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server_error", "error", err)
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

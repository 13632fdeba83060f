package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"fleethub/config"
	"fleethub/internal/db"
	"fleethub/internal/fleet"
	"fleethub/internal/ingest"
	"fleethub/internal/logs"
	"fleethub/internal/models"
	"fleethub/internal/registry"
	"fleethub/internal/repo"
	"fleethub/internal/stream"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db       *gorm.DB
	consumer *stream.Consumer
	ctx      context.Context
	cancel   context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config, reg registry.Client) {
	a.cfg = cfg

	// 1) Logging
	logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	// 2) Database
	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logs.Logger.Fatalf("db open failed: %v", err)
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.Device{},
		&models.DeviceModel{},
		&models.DeviceTagValue{},
		&models.Label{},
		&models.LorawanTelemetry{},
	); err != nil {
		logs.Logger.Fatalf("db migrate failed: %v", err)
	}

	// 3) Registry (in-memory fallback when none is wired in)
	if reg == nil {
		logs.Logger.Warn("no device registry configured, using in-memory registry")
		reg = registry.NewMemRegistry()
	}

	// 4) Services
	store := repo.NewFleetStore(a.db)
	svc := fleet.NewService(store, reg)

	// 5) Router
	a.Router = mux.NewRouter()
	a.Router.Use(requestLogger)
	fleet.NewHTTP(svc).RegisterRoutes(a.Router)
	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	a.Router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// 6) Telemetry ingestion off the event stream
	pipeline := ingest.New(store, ingest.NewRetention(cfg.Telemetry.MaxRecords))
	a.consumer = stream.NewConsumer(stream.Options{
		Broker:   cfg.MQTT.Broker,
		Topic:    cfg.MQTT.Topic,
		ClientID: cfg.MQTT.ClientID,
	}, pipeline)
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	if err := a.consumer.Start(); err != nil {
		logs.Logger.Errorf("event stream unavailable: %v", err)
	}

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	a.consumer.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logs.Logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg, reg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }

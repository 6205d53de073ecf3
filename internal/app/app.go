package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jonboulle/clockwork"

	"github.com/cinesync/server/internal/controller"
	"github.com/cinesync/server/internal/repository/connection/inmemory"
	"github.com/cinesync/server/internal/repository/mediaprobe"
	showmysql "github.com/cinesync/server/internal/repository/show/mysql"
	"github.com/cinesync/server/internal/repository/subtitle"
	"github.com/cinesync/server/internal/repository/wssender"
	"github.com/cinesync/server/internal/service/auth"
	showservice "github.com/cinesync/server/internal/service/show"
	"github.com/cinesync/server/internal/service/watch"
	"github.com/cinesync/server/pkg/ctxlogger"
	"github.com/cinesync/server/pkg/redisclient"
)

type AppConfig struct {
	Secret        string `json:"-"`
	AdminPassword string `json:"-"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	LogLevel      string `json:"log_level"`
	MysqlDSN      string `json:"-"`
	RedisPort     int    `json:"redis_port"`
	RedisHost     string `json:"redis_host"`
	RedisPassword string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("admin password must be set")
	}
	if cfg.MysqlDSN == "" {
		return fmt.Errorf("mysql dsn must be set")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	db, err := sql.Open("mysql", cfg.MysqlDSN)
	if err != nil {
		return fmt.Errorf("failed to open mysql: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	showRepo := showmysql.NewRepo(db, logger)
	subtitleRepo := subtitle.NewCachedRepo(
		subtitle.NewFetcher(30*time.Second),
		rc,
		24*time.Hour,
		logger,
	)
	probeRepo := mediaprobe.NewRepo(30 * time.Second)
	connectionRepo := inmemory.NewRepo()
	sender := wssender.NewRepo()

	clock := clockwork.NewRealClock()

	authService := auth.NewService(&auth.Config{
		Secret:        cfg.Secret,
		AdminPassword: cfg.AdminPassword,
	}, logger)
	watchService := watch.NewService(showRepo, subtitleRepo, connectionRepo, sender, authService, clock, logger, nil)
	showService := showservice.NewService(showRepo, subtitleRepo, probeRepo, clock, logger)

	if err := watchService.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover rooms: %w", err)
	}

	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()
	go watchService.Run(engineCtx)

	controller := controller.NewController(watchService, showService, authService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		stopEngine()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/niklvrr/reviewpulse/internal/config"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/db"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/repository"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/tracker"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"github.com/niklvrr/reviewpulse/pkg/logger"
	"go.uber.org/zap"
)

var (
	configLoadError  = errors.New("config load error")
	trackerInitError = errors.New("tracker client init error")
	storeInitError   = errors.New("last run store init error")
)

// lastRunStore хранилище времени последнего запуска вместе с проверкой доступности
type lastRunStore interface {
	service.LastRunRepository
	Ping(ctx context.Context) error
}

// app собранные зависимости одного запуска команды
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	tracker  *tracker.Client
	reports  *config.Reports
	settings domain.Settings
	store    lastRunStore
	closers  []func()
}

// newApp читает конфигурацию и поднимает клиент трекера; хранилище открывается только при withStore
func newApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", configLoadError, err)
	}
	if reportsPath != "" {
		cfg.ReportsConfig = reportsPath
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}

	log, err := logger.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	reports, err := config.LoadReports(cfg.ReportsConfig)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", configLoadError, err)
	}
	a.reports = reports
	a.settings = reports.Settings
	a.settings.TrackerURL = cfg.Tracker.URL
	if cfg.App.WebBaseURL != "" {
		a.settings.WebBaseURL = cfg.App.WebBaseURL
	}

	client, err := tracker.NewClient(tracker.Config{
		BaseURL: cfg.Tracker.URL,
		Token:   cfg.Tracker.Token,
		RPS:     cfg.Tracker.RPS,
		Burst:   cfg.Tracker.Burst,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %w", trackerInitError, err)
	}
	a.tracker = client

	if withStore {
		if err := a.openStore(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("%w: %w", storeInitError, err)
		}
	}

	log.Debug("app initialized",
		zap.String("env", cfg.App.Env),
		zap.String("reports_config", cfg.ReportsConfig),
		zap.Int("reports", len(reports.Definitions)),
		zap.String("last_run_driver", cfg.LastRun.Driver),
	)
	return a, nil
}

// openStore выбирает хранилище по LAST_RUN_DRIVER; none оставляет store пустым
func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.LastRun.Driver {
	case config.DriverNone:
		return nil
	case config.DriverPostgres:
		pool, err := db.NewDatabase(ctx, a.cfg.Database.URL, db.DefaultMigrationsSource, a.log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		a.store = repository.NewLastRunRepository(pool, a.log)
	default:
		sqlDB, err := db.NewSQLite(ctx, a.cfg.LastRun.SQLitePath, a.log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		a.store = repository.NewSQLiteLastRunRepository(sqlDB, a.log)
	}
	return nil
}

// lastRunRepository интерфейс для сервиса; без хранилища отдает nil-интерфейс, а не nil-указатель
func (a *app) lastRunRepository() service.LastRunRepository {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) reportService() *service.ReportService {
	return service.NewReportService(a.tracker, a.lastRunRepository(), a.settings, a.reports.Definitions, a.log)
}

func (a *app) metricsService() *service.MetricsService {
	return service.NewMetricsService(a.tracker, a.settings, a.log)
}

// Close освобождает ресурсы в обратном порядке
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

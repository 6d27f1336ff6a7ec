package app

import (
	"context"

	"github.com/NasaVasa/shadowprice/internal/config"
	"github.com/NasaVasa/shadowprice/internal/delivery/telegram"
	"github.com/NasaVasa/shadowprice/internal/infra/db"
	"github.com/NasaVasa/shadowprice/internal/infra/log"
	"github.com/NasaVasa/shadowprice/internal/infra/market"
	"github.com/NasaVasa/shadowprice/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	bot       *telegram.Bot
	monitor   *usecase.Monitor
	stream    *market.TickerStream
	watchList []string
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	userRepo := db.NewUserRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)
	autoAlertRepo := db.NewAutoAlertRepository(dbConn)

	restClient := market.NewClient(cfg.CoingeckoBaseURL, cfg.BinanceBaseURL, cfg.PriceTimeout, cfg.PriceRateLimitWait, logger)
	stream := market.NewTickerStream(cfg.BinanceStreamURL, logger)
	source := market.NewSource(restClient, stream, cfg.StreamQuoteMaxAge, cfg.PriceFetchDelay, logger)

	userUC := usecase.NewUserUsecase(userRepo)
	alertUC := usecase.NewAlertUsecase(userRepo, alertRepo, source)
	autoUC := usecase.NewAutoAlertUsecase(userRepo, autoAlertRepo, cfg.WatchList())
	priceUC := usecase.NewPriceUsecase(userRepo, alertRepo, source)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}

	notifier := telegram.NewNotifier(api, logger)
	evaluator := usecase.NewThresholdEvaluator()
	detector := usecase.NewVolatilityDetector(cfg.VolatilityLookback, cfg.HistoryRetention, cfg.NotificationCooldown, cfg.VolatilityThresholdPct)
	monitor := usecase.NewMonitor(alertRepo, autoAlertRepo, source, notifier, evaluator, detector, cfg.PollInterval, cfg.ErrorBackoff, logger)

	handlers := telegram.NewHandlers(userUC, alertUC, autoUC, priceUC, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{
		bot:       bot,
		monitor:   monitor,
		stream:    stream,
		watchList: cfg.WatchList(),
		logger:    logger,
		cleanupFn: cleanup,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("shadowprice service starting")

	go a.stream.Run(ctx, a.watchList)
	a.monitor.Start(ctx)

	a.logger.Info("shadowprice service started")
	return a.bot.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("shadowprice service shutting down")
	a.monitor.Stop()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

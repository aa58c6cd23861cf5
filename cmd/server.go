package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trading-signal-bot/internal/delivery/http"
	"trading-signal-bot/internal/delivery/telegram"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/internal/service"
	"trading-signal-bot/internal/strategy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the trading signal bot",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer func() {
		if err := appDep.Close(); err != nil {
			log.Printf("Failed to close app dependency: %v", err)
		}
	}()

	if err := run(ctx, appDep); err != nil {
		appDep.log.Error("Bot stopped with error", zap.Error(err))
	}
}

// run starts every loop and the HTTP server, and returns once all of them have
// observed cancellation of ctx or one of them failed.
func run(ctx context.Context, appDep *AppDependency) error {
	cfg := appDep.cfg
	repo := repository.NewRepository(cfg, appDep.db.DB, appDep.log)
	gate := strategy.NewSessionGate(cfg.Strategy, nil)
	generator := strategy.NewSignalGenerator(cfg.Strategy, gate, nil)

	services := service.NewService(
		cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.telegram,
		appDep.metrics,
		appDep.db,
		generator,
	)

	g, gctx := errgroup.WithContext(ctx)

	telegramHandler := telegram.NewTelegramBotHandler(
		gctx,
		cfg,
		appDep.log,
		appDep.telegramBot,
		appDep.telegram,
		services,
		appDep.metrics,
	)
	httpHandler := http.NewHttpAPIHandler(gctx, cfg, appDep.echo, appDep.validator, services, appDep.gatherer)
	apiServer := NewHTTPServer(gctx, appDep, httpHandler)

	services.SystemEventService.RecordEvent(ctx, model.EventSystemStartup, model.SeverityInfo,
		"System Startup", "Trading bot started", map[string]interface{}{
			"service":    cfg.App.ServiceName,
			"symbols":    len(cfg.MarketData.Symbols()),
			"max_signal": cfg.Strategy.MaxDailySignals,
		})

	appDep.telegram.StartCleanupExpired(gctx)

	for _, loop := range services.SchedulerService.Loops() {
		loop := loop
		g.Go(func() error {
			return services.SchedulerService.Run(gctx, loop)
		})
	}

	g.Go(func() error {
		telegramHandler.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		telegramHandler.Stop()
		return nil
	})

	g.Go(func() error {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	err := g.Wait()
	appDep.log.Info("Shutting down gracefully...")
	appDep.telegram.StopCleanupExpired()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	services.SystemEventService.RecordEvent(shutdownCtx, model.EventSystemShutdown, model.SeverityInfo,
		"System Shutdown", "Trading bot stopped", nil)
	return err
}

package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/pkg/cache"
	"trading-signal-bot/pkg/common"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/ratelimit"
	"trading-signal-bot/pkg/utils"

	"golang.org/x/time/rate"
)

// MarketDataCollectorStrategy polls every configured instrument once per run.
type MarketDataCollectorStrategy struct {
	cfg                  config.MarketData
	logger               *logger.Logger
	inmemoryCache        cache.Cache
	quoteRepository      repository.QuoteRepository
	marketDataRepository repository.MarketDataRepository
	systemEvent          contract.SystemEventContract
	metrics              *metrics.Recorder
	providerPause        *ratelimit.LimiterStore
}

type MarketDataCollectorResult struct {
	Symbol    string  `json:"symbol"`
	Provider  string  `json:"provider,omitempty"`
	Bars      int     `json:"bars,omitempty"`
	LastClose float64 `json:"last_close,omitempty"`
	Errors    string  `json:"errors,omitempty"`
}

func NewMarketDataCollectorStrategy(
	cfg *config.Config,
	logger *logger.Logger,
	inmemoryCache cache.Cache,
	quoteRepository repository.QuoteRepository,
	marketDataRepository repository.MarketDataRepository,
	systemEvent contract.SystemEventContract,
	metrics *metrics.Recorder,
) JobExecutionStrategy {
	pause := rate.Inf
	if cfg.MarketData.SymbolPause > 0 {
		pause = rate.Every(cfg.MarketData.SymbolPause)
	}
	return &MarketDataCollectorStrategy{
		cfg:                  cfg.MarketData,
		logger:               logger,
		inmemoryCache:        inmemoryCache,
		quoteRepository:      quoteRepository,
		marketDataRepository: marketDataRepository,
		systemEvent:          systemEvent,
		metrics:              metrics,
		providerPause:        ratelimit.NewLimiterStore(pause, 1),
	}
}

func (s *MarketDataCollectorStrategy) GetType() JobType {
	return JobTypeMarketDataCollector
}

// Execute fetches each symbol in turn. A failing symbol is logged and skipped;
// the run only fails when no symbol could be collected at all.
func (s *MarketDataCollectorStrategy) Execute(ctx context.Context) (JobResult, error) {
	symbols := s.cfg.Symbols()
	s.logger.DebugContext(ctx, "Collecting market data", logger.IntField("symbols", len(symbols)))

	status := dto.FeedStatus{SymbolsTotal: len(symbols)}
	results := make([]MarketDataCollectorResult, 0, len(symbols))

	for _, symbol := range symbols {
		if !utils.ShouldContinue(ctx, s.logger) {
			return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: "market data collection cancelled"}, ctx.Err()
		}

		result := s.collect(ctx, symbol)
		if result.Errors != "" {
			status.SymbolsFailed++
		} else {
			status.SymbolsOK++
		}
		results = append(results, result)
	}

	status.LastCycleAt = utils.TimeNowUTC()
	s.inmemoryCache.Set(common.KEY_FEED_STATUS, status, s.cfg.FeedStatusTTL)

	output, err := json.Marshal(results)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal collector results", logger.ErrorField(err))
	}

	s.logger.InfoContext(ctx, "Market data cycle completed",
		logger.IntField("ok", status.SymbolsOK),
		logger.IntField("failed", status.SymbolsFailed),
		logger.IntField("total", status.SymbolsTotal),
	)

	switch {
	case status.SymbolsTotal > 0 && status.SymbolsOK == 0:
		s.systemEvent.RecordEvent(ctx, model.EventDataFeedError, model.SeverityError,
			"Market data cycle failed",
			fmt.Sprintf("none of the %d configured symbols could be collected", status.SymbolsTotal),
			map[string]interface{}{"results": results},
		)
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(output)}, errors.New("no symbol could be collected")
	case status.SymbolsFailed > 0:
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(output)}, nil
	default:
		return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(output)}, nil
	}
}

func (s *MarketDataCollectorStrategy) collect(ctx context.Context, symbol string) MarketDataCollectorResult {
	result := MarketDataCollectorResult{Symbol: symbol}

	provider, err := s.quoteRepository.Provider(symbol)
	result.Provider = provider
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrUnsupportedSymbol):
			s.logger.WarnContext(ctx, "Unsupported symbol, skipping", logger.StringField("symbol", symbol))
		case errors.Is(err, dto.ErrProviderUnavailable):
			s.logger.WarnContext(ctx, "Market data client not available, skipping",
				logger.StringField("symbol", symbol),
				logger.StringField("provider", provider),
			)
		}
		s.metrics.RecordFetch(provider, symbol, "skipped", 0)
		result.Errors = err.Error()
		return result
	}

	if err := s.providerPause.GetLimiter(provider).Wait(ctx); err != nil {
		result.Errors = err.Error()
		return result
	}

	start := time.Now()
	snapshot, err := s.quoteRepository.Fetch(ctx, symbol)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch market data",
			logger.ErrorField(err),
			logger.StringField("symbol", symbol),
			logger.StringField("provider", provider),
		)
		s.metrics.RecordFetch(provider, symbol, "error", elapsed)
		result.Errors = err.Error()
		return result
	}
	s.metrics.RecordFetch(provider, symbol, "ok", elapsed)

	result.Bars = len(snapshot.Bars)
	lastClose, ok := snapshot.LastClose()
	if ok {
		result.LastClose = lastClose
		s.metrics.RecordLastClose(symbol, lastClose)
		s.inmemoryCache.Set(fmt.Sprintf(common.KEY_LAST_QUOTE, symbol), lastClose, s.cfg.FeedStatusTTL)
	}

	s.logger.InfoContext(ctx, "Market data fetched",
		logger.StringField("symbol", symbol),
		logger.StringField("provider", provider),
		logger.IntField("bars", len(snapshot.Bars)),
		logger.FloatField("last_close", lastClose),
	)

	if s.cfg.StoreBars && len(snapshot.Bars) > 0 {
		s.storeBars(ctx, snapshot)
	}
	return result
}

// storeBars is best effort; a failed insert is only logged.
func (s *MarketDataCollectorStrategy) storeBars(ctx context.Context, snapshot *dto.MarketSnapshot) {
	bars := make([]model.MarketBar, 0, len(snapshot.Bars))
	for _, b := range snapshot.Bars {
		bars = append(bars, model.MarketBar{
			Symbol:    b.Symbol,
			Timeframe: b.Timeframe,
			Timestamp: b.Timestamp,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	inserted, err := s.marketDataRepository.SaveBars(ctx, bars)
	if err != nil {
		s.metrics.RecordPersistenceError("market_data")
		s.logger.ErrorContext(ctx, "Failed to store market data", logger.ErrorField(err), logger.StringField("symbol", snapshot.Symbol))
		return
	}
	s.logger.DebugContext(ctx, "Market data stored",
		logger.StringField("symbol", snapshot.Symbol),
		logger.IntField("inserted", int(inserted)),
	)
}

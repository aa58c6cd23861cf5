package repository

import (
	"context"
	"fmt"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/common"
	"trading-signal-bot/pkg/utils"
)

// QuoteRepository routes a symbol to the provider that serves its asset class.
type QuoteRepository interface {
	Fetch(ctx context.Context, symbol string) (*dto.MarketSnapshot, error)
	Provider(symbol string) (string, error)
}

type quoteRepository struct {
	cfg              config.MarketData
	bybitRepo        BybitRepository
	alphaVantageRepo AlphaVantageRepository
}

// NewQuoteRepository wires the providers. bybitRepo may be nil when no crypto credentials are configured.
func NewQuoteRepository(cfg config.MarketData, bybitRepo BybitRepository, alphaVantageRepo AlphaVantageRepository) QuoteRepository {
	return &quoteRepository{
		cfg:              cfg,
		bybitRepo:        bybitRepo,
		alphaVantageRepo: alphaVantageRepo,
	}
}

func (r *quoteRepository) Provider(symbol string) (string, error) {
	switch {
	case utils.ContainsString(r.cfg.CryptoSymbols, symbol):
		if r.bybitRepo == nil {
			return common.PROVIDER_BYBIT, fmt.Errorf("%w: bybit client for %s", dto.ErrProviderUnavailable, symbol)
		}
		return common.PROVIDER_BYBIT, nil
	case utils.ContainsString(r.cfg.ForexSymbols, symbol), utils.ContainsString(r.cfg.CommoditySymbols, symbol):
		if r.alphaVantageRepo == nil {
			return common.PROVIDER_ALPHA_VANTAGE, fmt.Errorf("%w: alpha vantage client for %s", dto.ErrProviderUnavailable, symbol)
		}
		return common.PROVIDER_ALPHA_VANTAGE, nil
	default:
		return "", fmt.Errorf("%w: %s", dto.ErrUnsupportedSymbol, symbol)
	}
}

func (r *quoteRepository) Fetch(ctx context.Context, symbol string) (*dto.MarketSnapshot, error) {
	provider, err := r.Provider(symbol)
	if err != nil {
		return nil, err
	}

	var bars []dto.Bar
	if provider == common.PROVIDER_BYBIT {
		bars, err = r.bybitRepo.GetKlines(ctx, symbol)
	} else {
		bars, err = r.alphaVantageRepo.GetIntraday(ctx, symbol)
	}
	if err != nil {
		return nil, err
	}

	return &dto.MarketSnapshot{
		Symbol:    symbol,
		Provider:  provider,
		Bars:      bars,
		FetchedAt: utils.TimeNowUTC(),
	}, nil
}

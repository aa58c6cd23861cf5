package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/httpclient"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/ratelimit"

	"github.com/tidwall/gjson"
)

const alphaVantageTimeLayout = "2006-01-02 15:04:05"

type AlphaVantageRepository interface {
	GetIntraday(ctx context.Context, symbol string) ([]dto.Bar, error)
}

type alphaVantageRepository struct {
	httpClient httpclient.HTTPClient
	cfg        config.AlphaVantage
	logger     *logger.Logger
	quota      *ratelimit.TokenLimiter
}

func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) AlphaVantageRepository {
	return &alphaVantageRepository{
		httpClient: httpclient.New(log, cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.Timeout, ""),
		cfg:        cfg.AlphaVantage,
		logger:     log,
		quota:      ratelimit.NewTokenLimiter(cfg.AlphaVantage.MaxRequestPerMinute),
	}
}

// queryParams picks FX_INTRADAY for six-letter currency or metal pairs and the
// equity intraday series for anything else.
func (r *alphaVantageRepository) queryParams(symbol string) map[string]string {
	params := map[string]string{
		"interval":   r.cfg.Interval,
		"outputsize": r.cfg.OutputSize,
		"apikey":     r.cfg.APIKey,
	}
	if len(symbol) == 6 {
		params["function"] = "FX_INTRADAY"
		params["from_symbol"] = symbol[:3]
		params["to_symbol"] = symbol[3:]
	} else {
		params["function"] = "TIME_SERIES_INTRADAY"
		params["symbol"] = symbol
	}
	return params
}

func (r *alphaVantageRepository) GetIntraday(ctx context.Context, symbol string) ([]dto.Bar, error) {
	if err := r.quota.Wait(ctx, 1); err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, "/query", r.queryParams(symbol), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intraday data from alpha vantage: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Alpha Vantage API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("%w: alpha vantage status %d", dto.ErrProviderResponse, resp.StatusCode)
	}

	return parseAlphaVantageIntraday(symbol, resp.Body)
}

func parseAlphaVantageIntraday(symbol string, body []byte) ([]dto.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: alpha vantage returned invalid json", dto.ErrProviderResponse)
	}
	root := gjson.ParseBytes(body)

	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg := root.Get(key); msg.Exists() {
			return nil, fmt.Errorf("%w: %s", dto.ErrProviderResponse, msg.String())
		}
	}

	loc := time.UTC
	root.Get("Meta Data").ForEach(func(k, v gjson.Result) bool {
		if strings.HasSuffix(k.String(), "Time Zone") {
			if l, err := time.LoadLocation(v.String()); err == nil {
				loc = l
			}
			return false
		}
		return true
	})

	var series gjson.Result
	root.ForEach(func(k, v gjson.Result) bool {
		if strings.HasPrefix(k.String(), "Time Series") {
			series = v
			return false
		}
		return true
	})
	if !series.Exists() {
		return nil, fmt.Errorf("%w: %s", dto.ErrNoData, symbol)
	}

	var bars []dto.Bar
	var parseErr error
	series.ForEach(func(ts, v gjson.Result) bool {
		at, err := time.ParseInLocation(alphaVantageTimeLayout, ts.String(), loc)
		if err != nil {
			parseErr = fmt.Errorf("invalid timestamp %q: %w", ts.String(), err)
			return false
		}
		bars = append(bars, dto.Bar{
			Symbol:    symbol,
			Timeframe: dto.Timeframe1Min,
			Timestamp: at.UTC(),
			Open:      v.Get(`1\. open`).Float(),
			High:      v.Get(`2\. high`).Float(),
			Low:       v.Get(`3\. low`).Float(),
			Close:     v.Get(`4\. close`).Float(),
			Volume:    v.Get(`5\. volume`).Float(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", dto.ErrNoData, symbol)
	}
	return bars, nil
}

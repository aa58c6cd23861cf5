package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/httpclient"
	"trading-signal-bot/pkg/logger"

	"golang.org/x/time/rate"
)

type BybitRepository interface {
	GetKlines(ctx context.Context, symbol string) ([]dto.Bar, error)
}

type bybitRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            config.Bybit
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	now            func() time.Time
}

func NewBybitRepository(cfg *config.Config, log *logger.Logger) BybitRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Bybit.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	baseURL := cfg.Bybit.BaseURL
	if cfg.Bybit.Testnet {
		baseURL = cfg.Bybit.TestnetBaseURL
		log.Warn("Using Bybit testnet", logger.StringField("base_url", baseURL))
	}

	return &bybitRepository{
		httpClient:     httpclient.New(log, baseURL, cfg.Bybit.Timeout, ""),
		cfg:            cfg.Bybit,
		logger:         log,
		requestLimiter: requestLimiter,
		now:            time.Now,
	}
}

// sign builds the v5 HMAC-SHA256 signature over timestamp, key, recv window and query.
func (r *bybitRepository) sign(timestamp, query string) string {
	h := hmac.New(sha256.New, []byte(r.cfg.SecretKey))
	h.Write([]byte(timestamp + r.cfg.APIKey + r.cfg.RecvWindow + query))
	return hex.EncodeToString(h.Sum(nil))
}

func (r *bybitRepository) GetKlines(ctx context.Context, symbol string) ([]dto.Bar, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"category": r.cfg.Category,
		"symbol":   symbol,
		"interval": r.cfg.Interval,
		"limit":    strconv.Itoa(r.cfg.Limit),
	}
	values := url.Values{}
	for k, v := range queryParams {
		values.Set(k, v)
	}

	timestamp := strconv.FormatInt(r.now().UnixMilli(), 10)
	headers := map[string]string{
		"X-BAPI-API-KEY":     r.cfg.APIKey,
		"X-BAPI-TIMESTAMP":   timestamp,
		"X-BAPI-RECV-WINDOW": r.cfg.RecvWindow,
		"X-BAPI-SIGN":        r.sign(timestamp, values.Encode()),
	}

	resp, err := r.httpClient.Get(ctx, "/v5/market/kline", queryParams, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines from bybit: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Bybit API returned Non-OK status for klines",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("%w: bybit status %d", dto.ErrProviderResponse, resp.StatusCode)
	}

	var body dto.BybitKlineResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("failed to decode bybit klines: %w", err)
	}
	if body.RetCode != 0 {
		return nil, fmt.Errorf("%w: bybit retCode %d: %s", dto.ErrProviderResponse, body.RetCode, body.RetMsg)
	}
	if len(body.Result.List) == 0 {
		return nil, fmt.Errorf("%w: %s", dto.ErrNoData, symbol)
	}

	bars := make([]dto.Bar, 0, len(body.Result.List))
	for _, k := range body.Result.List {
		bar, err := parseBybitKline(symbol, k)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping malformed bybit kline",
				logger.StringField("symbol", symbol),
				logger.ErrorField(err))
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseBybitKline reads [startTime, open, high, low, close, volume, turnover].
func parseBybitKline(symbol string, k []string) (dto.Bar, error) {
	if len(k) < 6 {
		return dto.Bar{}, fmt.Errorf("kline has %d fields", len(k))
	}
	startMs, err := strconv.ParseInt(k[0], 10, 64)
	if err != nil {
		return dto.Bar{}, fmt.Errorf("invalid start time %q: %w", k[0], err)
	}
	prices := make([]float64, 5)
	for i := range prices {
		prices[i], err = strconv.ParseFloat(k[i+1], 64)
		if err != nil {
			return dto.Bar{}, fmt.Errorf("invalid number %q: %w", k[i+1], err)
		}
	}
	return dto.Bar{
		Symbol:    symbol,
		Timeframe: dto.Timeframe1Min,
		Timestamp: time.UnixMilli(startMs).UTC(),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
	}, nil
}

package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trading-signal-bot/config"
	"trading-signal-bot/internal/dto"
	"trading-signal-bot/pkg/common"
	"trading-signal-bot/pkg/httpclient"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setupBybit(handler http.Handler) (*bybitRepository, *httptest.Server) {
	server := httptest.NewServer(handler)
	log := logger.NewNop()
	repo := &bybitRepository{
		httpClient: httpclient.New(log, server.URL, time.Second, ""),
		cfg: config.Bybit{
			APIKey: "test_api_key", SecretKey: "test_secret_key", RecvWindow: "5000",
			Category: "spot", Interval: "1", Limit: 200,
		},
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Inf, 1),
		now:            func() time.Time { return time.UnixMilli(1700000000000) },
	}
	return repo, server
}

func TestBybitRepository_GetKlines(t *testing.T) {
	t.Run("signed request and parsed bars", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v5/market/kline", r.URL.Path)
			assert.Equal(t, "spot", r.URL.Query().Get("category"))
			assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			assert.Equal(t, "200", r.URL.Query().Get("limit"))
			assert.Equal(t, "test_api_key", r.Header.Get("X-BAPI-API-KEY"))
			assert.Equal(t, "1700000000000", r.Header.Get("X-BAPI-TIMESTAMP"))

			mac := hmac.New(sha256.New, []byte("test_secret_key"))
			mac.Write([]byte("1700000000000" + "test_api_key" + "5000" + r.URL.RawQuery))
			assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-BAPI-SIGN"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"category":"spot","symbol":"BTCUSDT","list":[
				["1700000060000","37010.5","37020","37000","37015.2","1.25","46000"],
				["1700000000000","37000","37012","36990","37010.5","2.5","92000"]]}}`))
		})
		repo, server := setupBybit(handler)
		defer server.Close()

		bars, err := repo.GetKlines(context.Background(), "BTCUSDT")
		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, 37015.2, bars[0].Close)
		assert.Equal(t, time.UnixMilli(1700000060000).UTC(), bars[0].Timestamp)
		assert.Equal(t, dto.Timeframe1Min, bars[1].Timeframe)

		snapshot := &dto.MarketSnapshot{Bars: bars}
		last, ok := snapshot.LastClose()
		assert.True(t, ok)
		assert.Equal(t, 37015.2, last)
	})

	t.Run("api error code", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"retCode":10001,"retMsg":"params error","result":{}}`))
		})
		repo, server := setupBybit(handler)
		defer server.Close()

		_, err := repo.GetKlines(context.Background(), "BTCUSDT")
		assert.ErrorIs(t, err, dto.ErrProviderResponse)
		assert.Contains(t, err.Error(), "params error")
	})

	t.Run("non ok status", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		repo, server := setupBybit(handler)
		defer server.Close()

		_, err := repo.GetKlines(context.Background(), "BTCUSDT")
		assert.ErrorIs(t, err, dto.ErrProviderResponse)
	})

	t.Run("empty list", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[]}}`))
		})
		repo, server := setupBybit(handler)
		defer server.Close()

		_, err := repo.GetKlines(context.Background(), "BTCUSDT")
		assert.ErrorIs(t, err, dto.ErrNoData)
	})
}

const fxIntradayBody = `{
	"Meta Data": {
		"1. Information": "FX Intraday (1min) Time Series",
		"2. From Symbol": "EUR",
		"3. To Symbol": "USD",
		"4. Last Refreshed": "2026-03-02 09:31:00",
		"5. Interval": "1min",
		"6. Output Size": "Compact",
		"7. Time Zone": "UTC"
	},
	"Time Series FX (1min)": {
		"2026-03-02 09:31:00": {"1. open": "1.09500", "2. high": "1.09520", "3. low": "1.09490", "4. close": "1.09510"},
		"2026-03-02 09:30:00": {"1. open": "1.09480", "2. high": "1.09505", "3. low": "1.09470", "4. close": "1.09500"}
	}
}`

func TestAlphaVantageRepository_GetIntraday(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		body      string
		checkReq  func(t *testing.T, r *http.Request)
		wantErr   error
		wantBars  int
		wantClose float64
	}{
		{
			name:   "fx pair",
			symbol: "EURUSD",
			body:   fxIntradayBody,
			checkReq: func(t *testing.T, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "FX_INTRADAY", q.Get("function"))
				assert.Equal(t, "EUR", q.Get("from_symbol"))
				assert.Equal(t, "USD", q.Get("to_symbol"))
				assert.Equal(t, "1min", q.Get("interval"))
				assert.Equal(t, "compact", q.Get("outputsize"))
				assert.Equal(t, "demo", q.Get("apikey"))
			},
			wantBars:  2,
			wantClose: 1.0951,
		},
		{
			name:    "rate limit note",
			symbol:  "GBPUSD",
			body:    `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`,
			wantErr: dto.ErrProviderResponse,
		},
		{
			name:    "error message",
			symbol:  "XAUUSD",
			body:    `{"Error Message":"Invalid API call"}`,
			wantErr: dto.ErrProviderResponse,
		},
		{
			name:    "no series",
			symbol:  "USDJPY",
			body:    `{"Meta Data":{}}`,
			wantErr: dto.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/query", r.URL.Path)
				if tt.checkReq != nil {
					tt.checkReq(t, r)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			log := logger.NewNop()
			repo := &alphaVantageRepository{
				httpClient: httpclient.New(log, server.URL, time.Second, ""),
				cfg:        config.AlphaVantage{APIKey: "demo", Interval: "1min", OutputSize: "compact"},
				logger:     log,
				quota:      ratelimit.NewTokenLimiter(100),
			}

			bars, err := repo.GetIntraday(context.Background(), tt.symbol)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, bars, tt.wantBars)

			last, ok := (&dto.MarketSnapshot{Bars: bars}).LastClose()
			assert.True(t, ok)
			assert.Equal(t, tt.wantClose, last)
		})
	}
}

type stubBybit struct {
	calls []string
}

func (s *stubBybit) GetKlines(ctx context.Context, symbol string) ([]dto.Bar, error) {
	s.calls = append(s.calls, symbol)
	return []dto.Bar{{Symbol: symbol, Close: 1}}, nil
}

type stubAlphaVantage struct {
	calls []string
	err   error
}

func (s *stubAlphaVantage) GetIntraday(ctx context.Context, symbol string) ([]dto.Bar, error) {
	s.calls = append(s.calls, symbol)
	if s.err != nil {
		return nil, s.err
	}
	return []dto.Bar{{Symbol: symbol, Close: 2}}, nil
}

func TestQuoteRepository_Routing(t *testing.T) {
	cfg := config.MarketData{
		CryptoSymbols:    []string{"BTCUSDT"},
		ForexSymbols:     []string{"EURUSD"},
		CommoditySymbols: []string{"XAUUSD"},
	}
	ctx := context.Background()

	t.Run("routes by asset class", func(t *testing.T) {
		bybit := &stubBybit{}
		av := &stubAlphaVantage{}
		repo := NewQuoteRepository(cfg, bybit, av)

		for _, symbol := range []string{"BTCUSDT", "EURUSD", "XAUUSD"} {
			_, err := repo.Fetch(ctx, symbol)
			require.NoError(t, err)
		}
		assert.Equal(t, []string{"BTCUSDT"}, bybit.calls)
		assert.Equal(t, []string{"EURUSD", "XAUUSD"}, av.calls)

		snap, err := repo.Fetch(ctx, "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, common.PROVIDER_BYBIT, snap.Provider)
	})

	t.Run("unsupported symbol", func(t *testing.T) {
		repo := NewQuoteRepository(cfg, &stubBybit{}, &stubAlphaVantage{})
		_, err := repo.Fetch(ctx, "DOGEEUR")
		assert.ErrorIs(t, err, dto.ErrUnsupportedSymbol)
	})

	t.Run("crypto without credentials", func(t *testing.T) {
		repo := NewQuoteRepository(cfg, nil, &stubAlphaVantage{})
		_, err := repo.Fetch(ctx, "BTCUSDT")
		assert.ErrorIs(t, err, dto.ErrProviderUnavailable)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		av := &stubAlphaVantage{err: errors.New("timeout")}
		repo := NewQuoteRepository(cfg, &stubBybit{}, av)
		_, err := repo.Fetch(ctx, "EURUSD")
		assert.EqualError(t, err, "timeout")
	})
}

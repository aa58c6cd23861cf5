package repository

import (
	"trading-signal-bot/config"
	"trading-signal-bot/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	SignalRepo              SignalRepository
	TradeRepo               TradeRepository
	StrategyPerformanceRepo StrategyPerformanceRepository
	SystemEventRepo         SystemEventRepository
	MarketDataRepo          MarketDataRepository
	UserInteractionRepo     UserInteractionRepository
	QuoteRepo               QuoteRepository
	UnitOfWork              UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) *Repository {
	var bybitRepo BybitRepository
	if cfg.Bybit.Enabled() {
		bybitRepo = NewBybitRepository(cfg, log)
		log.Info("Bybit client initialized")
	} else {
		log.Info("Bybit client not initialized, missing credentials")
	}
	alphaVantageRepo := NewAlphaVantageRepository(cfg, log)

	return &Repository{
		SignalRepo:              NewSignalRepository(db),
		TradeRepo:               NewTradeRepository(db),
		StrategyPerformanceRepo: NewStrategyPerformanceRepository(db),
		SystemEventRepo:         NewSystemEventRepository(db),
		MarketDataRepo:          NewMarketDataRepository(db),
		UserInteractionRepo:     NewUserInteractionRepository(db),
		QuoteRepo:               NewQuoteRepository(cfg.MarketData, bybitRepo, alphaVantageRepo),
		UnitOfWork:              NewUnitOfWork(db),
	}
}

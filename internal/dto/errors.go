package dto

import "errors"

var (
	ErrProviderUnavailable = errors.New("market data provider not available")
	ErrUnsupportedSymbol   = errors.New("unsupported symbol")
	ErrProviderResponse    = errors.New("market data provider returned an error")
	ErrNoData              = errors.New("market data provider returned no data")

	ErrSignalAlreadyHandled = errors.New("signal already handled")
)

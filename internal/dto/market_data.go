package dto

import "time"

const (
	Timeframe1Min = "1m"
)

type Bar struct {
	Symbol    string
	Timeframe string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarketSnapshot is what one provider returned for one symbol in one cycle.
type MarketSnapshot struct {
	Symbol    string
	Provider  string
	Bars      []Bar
	FetchedAt time.Time
}

// LastClose returns the close of the most recent bar.
func (s *MarketSnapshot) LastClose() (float64, bool) {
	if s == nil || len(s.Bars) == 0 {
		return 0, false
	}
	latest := s.Bars[0]
	for _, b := range s.Bars[1:] {
		if b.Timestamp.After(latest.Timestamp) {
			latest = b
		}
	}
	return latest.Close, true
}

// FeedStatus summarises the last completed collector cycle.
type FeedStatus struct {
	LastCycleAt   time.Time
	SymbolsOK     int
	SymbolsFailed int
	SymbolsTotal  int
}

type BybitKlineResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string     `json:"category"`
		Symbol   string     `json:"symbol"`
		List     [][]string `json:"list"`
	} `json:"result"`
	Time int64 `json:"time"`
}

package dto

import "time"

type SystemStatus struct {
	SystemStatus   string
	DatabaseStatus string
	DataFeedStatus string
	ActiveStrategy string
	SignalsToday   int
	MaxDaily       int
	DailyPnL       float64
	LastSignalTime *time.Time
	Uptime         time.Duration
	ActiveSession  string
}

type PeriodSummary struct {
	Signals   int
	Trades    int
	Wins      int
	Losses    int
	WinRate   float64
	TotalPips float64
	TotalPnL  float64
}

type PerformanceSummary struct {
	Today PeriodSummary
	Week  PeriodSummary
	Month PeriodSummary
}

type SessionInfo struct {
	Name      string
	StartHour int
	EndHour   int
	NextOpen  string
}

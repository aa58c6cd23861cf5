package service

import (
	"context"
	"encoding/json"
	"trading-signal-bot/internal/contract"
	"trading-signal-bot/internal/model"
	"trading-signal-bot/internal/repository"
	"trading-signal-bot/pkg/logger"
	"trading-signal-bot/pkg/metrics"
	"trading-signal-bot/pkg/utils"
)

type SystemEventService interface {
	contract.SystemEventContract
}

type systemEventService struct {
	log             *logger.Logger
	systemEventRepo repository.SystemEventRepository
	metrics         *metrics.Recorder
}

func NewSystemEventService(log *logger.Logger, systemEventRepo repository.SystemEventRepository, metrics *metrics.Recorder) SystemEventService {
	return &systemEventService{
		log:             log,
		systemEventRepo: systemEventRepo,
		metrics:         metrics,
	}
}

// RecordEvent inserts a system_events row. Failures are logged and otherwise ignored.
func (s *systemEventService) RecordEvent(ctx context.Context, eventType, severity, title, description string, contextData map[string]interface{}) {
	s.log.LogSystemEvent(ctx, title,
		logger.StringField("event_type", eventType),
		logger.StringField("severity", severity),
	)

	event := &model.SystemEvent{
		EventType:   eventType,
		Title:       title,
		Description: description,
		Severity:    severity,
		OccurredAt:  utils.TimeNowUTC(),
	}
	if contextData != nil {
		data, err := json.Marshal(contextData)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to marshal system event context", logger.ErrorField(err))
		} else {
			event.ContextData = data
		}
	}

	if err := s.systemEventRepo.Create(ctx, event); err != nil {
		s.metrics.RecordPersistenceError("system_events")
		s.log.ErrorContext(ctx, "Failed to record system event",
			logger.ErrorField(err),
			logger.StringField("event_type", eventType),
		)
	}
}

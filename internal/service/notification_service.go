package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/config"
	"github.com/civicpulse/grievance-service/internal/events"
)

// NotificationService consumes domain events and records dispatch intents.
// Actual delivery channels (SMS, email) live outside this service; the log
// line is the integration point for now.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{cfg: cfg, logger: logger}
}

// Register subscribes to every event type the lifecycle emits.
func (n *NotificationService) Register(dispatcher events.Dispatcher) {
	for _, t := range []events.EventType{
		events.EventGrievanceCreated,
		events.EventStatusChanged,
		events.EventGrievanceAssigned,
		events.EventResolutionSubmitted,
		events.EventGrievanceVerified,
		events.EventFeedbackAttached,
	} {
		dispatcher.Subscribe(t, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("notification queued",
		zap.String("event_type", string(event.Type)),
		zap.String("grievance_id", event.GrievanceID),
		zap.String("actor_type", string(event.Actor.Type)),
		zap.String("channel_from", n.cfg.EmailFrom))
	return nil
}

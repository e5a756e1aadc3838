package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/health-info-service/internal/config"
	"github.com/spec-kit/health-info-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDoctorRegistered, n.handleDoctorRegistered)
	n.dispatcher.Subscribe(events.EventProgramCreated, n.handleProgramCreated)
	n.dispatcher.Subscribe(events.EventClientEnrolled, n.handleClientEnrolled)
}

func (n *NotificationService) handleDoctorRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("DoctorRegistered", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProgramCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProgramCreated", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleClientEnrolled(ctx context.Context, event events.Event) error {
	n.logger.Info("ClientEnrolled", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}

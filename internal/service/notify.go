package service

import (
	"context"

	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"go.uber.org/zap"
)

// Poster - 메시지 채널 전송 (client.SlackClient)
type Poster interface {
	IsConfigured() bool
	Post(ctx context.Context, text string) error
}

type NotifyService struct {
	poster  Poster
	metrics *metrics.Metrics
}

func NewNotifyService(poster Poster, m *metrics.Metrics) *NotifyService {
	return &NotifyService{poster: poster, metrics: m}
}

// Notify - Slack 전송. 실패는 로그만 남기고 무시
func (s *NotifyService) Notify(ctx context.Context, message string) {
	if s.poster == nil || !s.poster.IsConfigured() {
		logging.Debug("Slack webhook not configured, skipping notification")
		s.metrics.ObserveNotification("skipped")
		return
	}

	if err := s.poster.Post(ctx, message); err != nil {
		logging.Error("Failed to send Slack notification", zap.Error(err))
		s.metrics.ObserveNotification("failed")
		return
	}

	logging.Info("Sent notification to Slack")
	s.metrics.ObserveNotification("sent")
}

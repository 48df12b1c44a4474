// Alert 처리 비즈니스 로직 정의
// handler에서 받은 웹훅 배치를 항목 단위로 파이프라인에 통과시킨다.
//
// 처리 흐름 (항목마다 순서대로):
//  1. 항목 디코딩 (labels 누락 등 잘못된 항목은 failed_alerts로 보고)
//  2. AI 제안 생성 (SuggestionService)
//  3. Self-healing 판단 (HealingService)
//  4. Slack 알림 (NotifyService)
//  5. AlertRecord를 로컬 파일에 append
//  6. Postgres 미러 + 제안 임베딩 (설정된 경우)
//  7. S3 단건 업로드 시작 (비동기)
//
// 한 항목의 실패나 panic은 해당 항목만 실패로 기록하고 나머지는 계속 처리한다.

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/kube-rca/incident-bot/internal/template"
	"go.uber.org/zap"
)

const embeddingTimeout = 10 * time.Second

type RecordStore interface {
	AppendAlert(record model.AlertRecord) error
}

type RecordMirror interface {
	SaveAlertRecord(ctx context.Context, record model.AlertRecord) error
}

// AlertService 구조체 정의
type AlertService struct {
	suggestions *SuggestionService
	healing     *HealingService
	notifier    *NotifyService
	archive     *ArchiveService
	store       RecordStore
	mirror      RecordMirror
	embeddings  *EmbeddingService
	template    string
	metrics     *metrics.Metrics
	now         func() time.Time
}

// AlertService 객체 생성
func NewAlertService(
	suggestions *SuggestionService,
	healing *HealingService,
	notifier *NotifyService,
	archive *ArchiveService,
	store RecordStore,
	messageTemplate string,
	m *metrics.Metrics,
) *AlertService {
	return &AlertService{
		suggestions: suggestions,
		healing:     healing,
		notifier:    notifier,
		archive:     archive,
		store:       store,
		template:    messageTemplate,
		metrics:     m,
		now:         time.Now,
	}
}

// SetMirror - Postgres 미러와 임베딩 서비스 연결 (선택)
func (s *AlertService) SetMirror(mirror RecordMirror, embeddings *EmbeddingService) {
	s.mirror = mirror
	s.embeddings = embeddings
}

func (s *AlertService) ProcessWebhook(ctx context.Context, webhook model.AlertmanagerWebhook) model.WebhookResult {
	// 요청이 끊겨도 나머지 항목 처리는 계속 (외부 호출은 각자 타임아웃 적용)
	ctx = context.WithoutCancel(ctx)

	result := model.WebhookResult{
		ProcessedAlerts: []model.ProcessedAlert{},
		FailedAlerts:    []model.FailedAlert{},
	}

	for i, raw := range webhook.Alerts {
		processed, err := s.processAlert(ctx, raw)
		if err != nil {
			logging.Error("Failed to process alert", zap.Int("index", i), zap.Error(err))
			result.FailedAlerts = append(result.FailedAlerts, model.FailedAlert{Index: i, Error: err.Error()})
			s.metrics.ObserveAlert(false)
			continue
		}
		result.ProcessedAlerts = append(result.ProcessedAlerts, processed)
		s.metrics.ObserveAlert(true)
	}

	result.ProcessedCount = len(result.ProcessedAlerts)
	return result
}

func (s *AlertService) processAlert(ctx context.Context, raw []byte) (processed model.ProcessedAlert, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing alert: %v", r)
		}
	}()

	info, err := model.DecodeAlertInfo(raw)
	if err != nil {
		return model.ProcessedAlert{}, err
	}

	name := info.Name()
	logging.Info("Processing alert", zap.String("alertname", name), zap.String("status", string(info.Status)))

	// 1. AI 제안
	suggestion := s.suggestions.Suggest(ctx, info)

	// 2. Self-healing
	outcome := s.healing.Attempt(ctx, info, suggestion.Confidence)

	// 3. Slack 알림
	message := template.RenderAlertMessage(s.template,
		template.AlertDataFromModel(info, suggestion, outcome, s.healing.Enabled()))
	s.notifier.Notify(ctx, message)

	// 4. 로컬 파일 기록
	record := model.NewAlertRecord(s.now(), info, suggestion, outcome)
	if err := s.store.AppendAlert(record); err != nil {
		return model.ProcessedAlert{}, fmt.Errorf("failed to record alert: %w", err)
	}

	// 5. Postgres 미러 (실패해도 처리 결과에는 영향 없음)
	s.mirrorRecord(ctx, record)

	// 6. S3 단건 업로드
	s.archive.UploadAlertRecord(record)

	return model.ProcessedAlert{
		AlertName:         name,
		SuggestionSummary: firstLine(suggestion.Text),
		Confidence:        suggestion.Confidence,
		SelfHealing:       outcome,
	}, nil
}

func (s *AlertService) mirrorRecord(ctx context.Context, record model.AlertRecord) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveAlertRecord(ctx, record); err != nil {
		logging.Warn("Failed to mirror alert record to DB", zap.String("id", record.ID.String()), zap.Error(err))
		return
	}

	if !s.embeddings.Enabled() || !s.suggestions.Enabled() {
		return
	}
	embedCtx, cancel := context.WithTimeout(ctx, embeddingTimeout)
	defer cancel()
	if modelName, err := s.embeddings.EmbedSuggestion(embedCtx, record); err != nil {
		logging.Warn("Failed to embed suggestion", zap.String("id", record.ID.String()), zap.String("model", modelName), zap.Error(err))
	}
}

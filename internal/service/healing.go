// Self-healing 판단 로직
//
// 판단 순서:
//  1. 비활성화 상태면 "disabled"
//  2. confidence < threshold 이면 실행하지 않음 (경계값은 통과)
//  3. AlertKind별 Remediator 실행 (실제 명령은 실행하지 않는 시뮬레이션)
//
// 모든 호출은 결과와 관계없이 HealingActionRecord 1건을 남긴다.

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kube-rca/incident-bot/internal/config"
	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/model"
	"go.uber.org/zap"
)

const (
	healingDisabledResult = "disabled"
	noHealingActionResult = "no healing action taken"
)

// Remediator - 알림 종류별 조치. 결과 문구를 반환하며 error/panic은 실패로 기록된다.
type Remediator func(ctx context.Context, info model.AlertInfo) (string, error)

// DefaultRemediators - 시뮬레이션 조치 목록
func DefaultRemediators() map[model.AlertKind]Remediator {
	return map[model.AlertKind]Remediator{
		model.AlertKindHighCPU: func(ctx context.Context, info model.AlertInfo) (string, error) {
			logging.Info("Simulating CPU-related healing action", zap.String("instance", info.Instance()))
			return "Simulated scaling the service to handle high CPU load", nil
		},
		model.AlertKindHighMemory: func(ctx context.Context, info model.AlertInfo) (string, error) {
			logging.Info("Simulating memory-related healing action", zap.String("instance", info.Instance()))
			return "Simulated restarting memory-intensive service", nil
		},
		model.AlertKindLowDisk: func(ctx context.Context, info model.AlertInfo) (string, error) {
			logging.Info("Simulating disk-related healing action", zap.String("instance", info.Instance()))
			return "Simulated cleaning up temporary files to free disk space", nil
		},
	}
}

type HealingRecorder interface {
	AppendHealingAction(record model.HealingActionRecord) error
}

type HealingMirror interface {
	SaveHealingAction(ctx context.Context, record model.HealingActionRecord) error
}

type HealingService struct {
	enabled     bool
	threshold   float64
	remediators map[model.AlertKind]Remediator
	recorder    HealingRecorder
	mirror      HealingMirror
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewHealingService(cfg config.HealingConfig, remediators map[model.AlertKind]Remediator, recorder HealingRecorder, m *metrics.Metrics) *HealingService {
	return &HealingService{
		enabled:     cfg.Enabled,
		threshold:   cfg.Threshold,
		remediators: remediators,
		recorder:    recorder,
		metrics:     m,
		now:         time.Now,
	}
}

// SetMirror - Postgres 미러 연결 (선택)
func (s *HealingService) SetMirror(mirror HealingMirror) {
	s.mirror = mirror
}

func (s *HealingService) Enabled() bool {
	return s.enabled
}

// Attempt - self-healing 판단 후 결과 반환 (에러를 반환하지 않음)
func (s *HealingService) Attempt(ctx context.Context, info model.AlertInfo, confidence float64) model.HealingOutcome {
	kind := model.ParseAlertKind(info.Name())
	outcome := s.decide(ctx, kind, info, confidence)

	record := model.NewHealingActionRecord(s.now(), info, confidence, outcome)
	if err := s.recorder.AppendHealingAction(record); err != nil {
		logging.Error("Failed to record healing action", zap.String("alertname", info.Name()), zap.Error(err))
	}
	if s.mirror != nil {
		if err := s.mirror.SaveHealingAction(ctx, record); err != nil {
			logging.Warn("Failed to mirror healing action to DB", zap.String("id", record.ID.String()), zap.Error(err))
		}
	}
	s.metrics.ObserveHealing(kind.String(), outcome.Success)

	return outcome
}

func (s *HealingService) decide(ctx context.Context, kind model.AlertKind, info model.AlertInfo, confidence float64) model.HealingOutcome {
	if !s.enabled {
		return model.HealingOutcome{Result: healingDisabledResult}
	}
	if confidence < s.threshold {
		return model.HealingOutcome{
			Result: fmt.Sprintf("Confidence too low for self-healing: %v < %v", confidence, s.threshold),
		}
	}

	remediate, ok := s.remediators[kind]
	if !ok {
		return model.HealingOutcome{Result: noHealingActionResult}
	}

	logging.Info("Attempting self-healing",
		zap.String("alertname", info.Name()),
		zap.String("kind", kind.String()),
		zap.Float64("confidence", confidence))

	result, err := runRemediator(ctx, remediate, info)
	if err != nil {
		logging.Error("Error during self-healing", zap.String("alertname", info.Name()), zap.Error(err))
		return model.HealingOutcome{Result: fmt.Sprintf("Self-healing error: %v", err)}
	}
	return model.HealingOutcome{Result: result, Success: true}
}

func runRemediator(ctx context.Context, remediate Remediator, info model.AlertInfo) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return remediate(ctx, info)
}

// 영속화 레코드 정의
// alerts_processed.jsonl / healing_actions.jsonl에 한 줄씩 append 되는 단위이자 S3 아카이빙 단위

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlertRecordNotFound = errors.New("alert record not found")

// AlertRecord - 처리 완료된 알림 1건 (append-only, 생성 후 변경 없음)
type AlertRecord struct {
	ID             uuid.UUID `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	AlertInfo      AlertInfo `json:"alert_info"`
	Suggestion     string    `json:"suggestion"`
	Confidence     float64   `json:"confidence"`
	HealingResult  string    `json:"healing_result"`
	HealingSuccess bool      `json:"healing_success"`
}

func NewAlertRecord(now time.Time, info AlertInfo, suggestion Suggestion, outcome HealingOutcome) AlertRecord {
	return AlertRecord{
		ID:             uuid.New(),
		Timestamp:      now,
		AlertInfo:      info,
		Suggestion:     suggestion.Text,
		Confidence:     suggestion.Confidence,
		HealingResult:  outcome.Result,
		HealingSuccess: outcome.Success,
	}
}

// HealingActionRecord - self-healing 판단 1건 (append-only)
type HealingActionRecord struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Alert      AlertInfo `json:"alert"`
	Confidence float64   `json:"confidence"`
	Action     string    `json:"action"`
	Success    bool      `json:"success"`
}

func NewHealingActionRecord(now time.Time, info AlertInfo, confidence float64, outcome HealingOutcome) HealingActionRecord {
	return HealingActionRecord{
		ID:         uuid.New(),
		Timestamp:  now,
		Alert:      info,
		Confidence: confidence,
		Action:     outcome.Result,
		Success:    outcome.Success,
	}
}

// SimilarAlert - 제안 임베딩 거리 기준 유사 알림
type SimilarAlert struct {
	ID         uuid.UUID `json:"id"`
	AlertName  string    `json:"alert_name"`
	Timestamp  time.Time `json:"timestamp"`
	Suggestion string    `json:"suggestion"`
	Confidence float64   `json:"confidence"`
	Distance   float64   `json:"distance"`
}

// Alertmanager 웹훅 페이로드 및 파이프라인 전반에서 공유하는 알림 구조체 정의
// handler, service, client, store 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedAlert = errors.New("malformed alert")

// AlertmanagerWebhook - Alertmanager 웹훅 페이로드
// 개별 알림은 항목 단위로 따로 디코딩하기 위해 RawMessage로 보관
// (한 항목이 깨져 있어도 나머지 항목은 처리해야 함)
type AlertmanagerWebhook struct {
	Version  string `json:"version"`
	GroupKey string `json:"groupKey"`
	Status   string `json:"status"`
	Receiver string `json:"receiver"`

	// 그룹 내 모든 알림에 공통으로 존재하는 라벨 (로그 용도, 값 타입은 검사하지 않음)
	CommonLabels map[string]any `json:"commonLabels"`
	ExternalURL  string         `json:"externalURL"`

	// 개별 알림 리스트
	Alerts []json.RawMessage `json:"alerts"`
}

type AlertStatus string

const (
	AlertStatusFiring   AlertStatus = "firing"
	AlertStatusResolved AlertStatus = "resolved"
	AlertStatusUnknown  AlertStatus = "unknown"
)

// ParseAlertStatus - firing/resolved 외의 값은 모두 unknown
func ParseAlertStatus(raw string) AlertStatus {
	switch AlertStatus(raw) {
	case AlertStatusFiring, AlertStatusResolved:
		return AlertStatus(raw)
	default:
		return AlertStatusUnknown
	}
}

// AlertInfo - 파이프라인이 처리하는 개별 알림
// 인바운드 페이로드에서 한 번 생성된 뒤 변경하지 않음
type AlertInfo struct {
	Status AlertStatus `json:"status"`

	// - alertname: 알림 이름 (예: "HighCPUUsage", "LowDiskSpace")
	// - instance: 문제 발생 인스턴스
	Labels map[string]string `json:"labels"`

	// - description: 알림 상세 설명
	Annotations map[string]string `json:"annotations"`
}

// alertEntry - 디코딩 전용. labels 누락 여부를 구분하기 위해 포인터 사용
type alertEntry struct {
	Status      *string            `json:"status"`
	Labels      *map[string]string `json:"labels"`
	Annotations map[string]string  `json:"annotations"`
}

// DecodeAlertInfo - 웹훅의 개별 알림 항목을 AlertInfo로 변환
//
//   - status 누락: unknown
//   - annotations 누락: 빈 map
//   - labels 누락 / 객체가 아님 / 타입 불일치: ErrMalformedAlert
func DecodeAlertInfo(raw json.RawMessage) (AlertInfo, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return AlertInfo{}, fmt.Errorf("%w: entry is not a JSON object", ErrMalformedAlert)
	}

	var entry alertEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return AlertInfo{}, fmt.Errorf("%w: %v", ErrMalformedAlert, err)
	}
	if entry.Labels == nil {
		return AlertInfo{}, fmt.Errorf("%w: missing labels", ErrMalformedAlert)
	}

	info := AlertInfo{
		Status:      AlertStatusUnknown,
		Labels:      copyMap(*entry.Labels),
		Annotations: copyMap(entry.Annotations),
	}
	if entry.Status != nil {
		info.Status = ParseAlertStatus(*entry.Status)
	}
	return info, nil
}

// Name - alertname 라벨 (없으면 "unknown")
func (a AlertInfo) Name() string {
	if name, ok := a.Labels["alertname"]; ok {
		return name
	}
	return "unknown"
}

func (a AlertInfo) Instance() string {
	return a.Labels["instance"]
}

func (a AlertInfo) Description() string {
	return a.Annotations["description"]
}

func copyMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

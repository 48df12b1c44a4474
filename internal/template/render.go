// Package template renders the Slack notification for a processed alert.
//
// 지원하는 변수 형식:
//
//	{{alert.alertname}}, {{alert.instance}}, {{alert.status}}, {{alert.description}}
//
//	{{suggestion.text}}, {{suggestion.confidence}}
//
//	{{healing.result}}
package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/kube-rca/incident-bot/internal/model"
)

// DefaultAlertTemplate - 기본 Slack 메시지 템플릿
const DefaultAlertTemplate = "\n" +
	":rotating_light: *ALERT: {{alert.alertname}}*\n" +
	":satellite: Instance: {{alert.instance}}\n" +
	":bar_chart: Status: {{alert.status}}\n" +
	":memo: Description: {{alert.description}}\n" +
	"\n" +
	":bulb: *AI Suggestion* (Confidence: {{suggestion.confidence}}):\n" +
	"```\n" +
	"{{suggestion.text}}\n" +
	"```\n" +
	"\n" +
	":wrench: *Self-Healing*: {{healing.result}}\n"

// AlertData - 템플릿 렌더링에 사용할 알림 데이터
type AlertData struct {
	AlertName      string
	Instance       string
	Status         string
	Description    string
	Suggestion     string
	Confidence     float64
	HealingResult  string
	HealingEnabled bool
}

// AlertDataFromModel - 파이프라인 결과에서 AlertData 생성 (누락 필드는 기본 문구로 채움)
func AlertDataFromModel(info model.AlertInfo, suggestion model.Suggestion, outcome model.HealingOutcome, healingEnabled bool) AlertData {
	return AlertData{
		AlertName:      valueOr(info.Labels["alertname"], "Unknown Alert"),
		Instance:       valueOr(info.Instance(), "Unknown Instance"),
		Status:         string(info.Status),
		Description:    valueOr(info.Description(), "No description"),
		Suggestion:     suggestion.Text,
		Confidence:     suggestion.Confidence,
		HealingResult:  outcome.Result,
		HealingEnabled: healingEnabled,
	}
}

// LoadTemplate - 템플릿 파일 로드 (경로가 비어있으면 기본 템플릿)
func LoadTemplate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAlertTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read notification template: %w", err)
	}
	return string(data), nil
}

// RenderAlertMessage - 템플릿의 변수를 실제 값으로 치환
//
// self-healing이 비활성화된 경우 {{healing.result}}는 "Disabled"로 치환됩니다.
func RenderAlertMessage(body string, data AlertData) string {
	healing := "Disabled"
	if data.HealingEnabled {
		healing = data.HealingResult
	}

	return strings.NewReplacer(
		"{{alert.alertname}}", data.AlertName,
		"{{alert.instance}}", data.Instance,
		"{{alert.status}}", data.Status,
		"{{alert.description}}", data.Description,
		"{{suggestion.text}}", data.Suggestion,
		"{{suggestion.confidence}}", fmt.Sprintf("%.2f", data.Confidence),
		"{{healing.result}}", healing,
	).Replace(body)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

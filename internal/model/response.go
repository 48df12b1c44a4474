package model

type ErrorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status             string `json:"status"`
	Message            string `json:"message"`
	AIEnabled          bool   `json:"ai_enabled"`
	SelfHealingEnabled bool   `json:"self_healing_enabled"`
}

// ProcessedAlert - 응답에 포함되는 알림별 처리 결과
type ProcessedAlert struct {
	AlertName         string         `json:"alert_name"`
	SuggestionSummary string         `json:"suggestion_summary"`
	Confidence        float64        `json:"confidence"`
	SelfHealing       HealingOutcome `json:"self_healing"`
}

// FailedAlert - 처리에 실패한 항목 (배치 내 인덱스 기준)
type FailedAlert struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type WebhookResult struct {
	ProcessedCount  int              `json:"processed_count"`
	ProcessedAlerts []ProcessedAlert `json:"processed_alerts"`
	FailedAlerts    []FailedAlert    `json:"failed_alerts"`
}

type AlertWebhookResponse struct {
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	Timestamp string        `json:"timestamp"`
	Data      WebhookResult `json:"data"`
}

type AlertRecordListResponse struct {
	Status string        `json:"status"`
	Source string        `json:"source"`
	Data   []AlertRecord `json:"data"`
}

type SimilarAlertListResponse struct {
	Status string         `json:"status"`
	Data   []SimilarAlert `json:"data"`
}

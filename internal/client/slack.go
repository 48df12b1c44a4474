// Slack Incoming Webhook 클라이언트 정의
//
// 환경변수:
//   - SLACK_WEBHOOK: Incoming Webhook URL (https://hooks.slack.com/services/...)
//
// 알림은 fire-and-forget 이므로 호출자는 에러를 로그로만 남긴다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kube-rca/incident-bot/internal/config"
)

// SlackClient 구조체 정의
type SlackClient struct {
	webhookURL string
	httpClient *http.Client
}

// SlackMessage(메시지 내용) 구조체 정의
type SlackMessage struct {
	Text   string `json:"text"`             // 메시지 본문 (mrkdwn)
	Mrkdwn bool   `json:"mrkdwn,omitempty"` // Slack 마크다운 해석 여부
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Webhook URL 설정 여부 체크
func (c *SlackClient) IsConfigured() bool {
	return c.webhookURL != ""
}

// Post - 메시지를 Incoming Webhook으로 전송
func (c *SlackClient) Post(ctx context.Context, text string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack webhook not configured")
	}

	// JSON 직렬화
	payload, err := json.Marshal(SlackMessage{Text: text, Mrkdwn: true})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// HTTP 요청 생성
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 요청 전송
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	// Incoming Webhook은 성공 시 200 + "ok" 본문만 반환
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

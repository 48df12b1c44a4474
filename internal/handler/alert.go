// Alertmanager 웹훅 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. Alertmanager가 POST /alert (또는 /webhook/alertmanager)로 알림 전송
//  2. JSON 페이로드를 AlertmanagerWebhook 구조체로 파싱 (실패 시 400)
//  3. service 레이어에서 항목별 파이프라인 처리 후 결과 반환

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/kube-rca/incident-bot/internal/service"
	"go.uber.org/zap"
)

// Alert 핸들러 구조체 정의
type AlertHandler struct {
	alertService *service.AlertService
}

// Alert 핸들러 객체 생성
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Webhook godoc
// @Summary Receive Alertmanager webhook
// @Tags alerts
// @Accept json
// @Produce json
// @Param request body model.AlertmanagerWebhook true "Alertmanager webhook payload"
// @Success 200 {object} model.AlertWebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /alert [post]
func (h *AlertHandler) Webhook(c *gin.Context) {
	var webhook model.AlertmanagerWebhook

	// 1. JSON 페이로드 파싱
	if err := c.ShouldBindJSON(&webhook); err != nil {
		logging.Warn("Failed to parse webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Status:    "error",
			Message:   fmt.Sprintf("invalid payload: %v", err),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	// 2. 웹훅 메타데이터 로깅
	logging.Info("Received alert webhook",
		zap.String("status", webhook.Status),
		zap.Int("alertCount", len(webhook.Alerts)),
		zap.String("receiver", webhook.Receiver),
		zap.String("groupKey", webhook.GroupKey))
	logging.Debug("Raw webhook payload", zap.Any("payload", webhook))

	// 3. 항목별 처리
	result := h.alertService.ProcessWebhook(c.Request.Context(), webhook)

	// 4. 응답 반환 (일부 항목 실패여도 요청 자체는 success)
	c.JSON(http.StatusOK, model.AlertWebhookResponse{
		Status:    "success",
		Message:   fmt.Sprintf("Processed %d alerts with AI suggestions", len(webhook.Alerts)),
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      result,
	})
}

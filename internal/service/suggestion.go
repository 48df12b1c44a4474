// AI 조치 제안 생성
//
// 처리 흐름:
//  1. 알림을 JSON으로 포함한 프롬프트 생성
//  2. Generator(Gemini) 호출 (타임아웃 적용)
//  3. 응답 앞부분의 "CONFIDENCE: 0.xx" 라인에서 신뢰도 추출 후 제거
//
// 어떤 실패도 호출자에게 에러로 전달하지 않고 기본 문구 + 신뢰도 0.0으로 대체한다.

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/model"
	"go.uber.org/zap"
)

const disabledSuggestion = "AI suggestions disabled. Set GEMINI_API_KEY environment variable."

var (
	confidencePattern  = regexp.MustCompile(`CONFIDENCE:[ \t]*([0-9]*\.?[0-9]+)`)
	errEmptySuggestion = errors.New("empty response from model")
)

// Generator - 프롬프트로 텍스트를 생성하는 외부 서비스 (client.GenAIClient)
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SuggestionService struct {
	generator Generator
	timeout   time.Duration
	metrics   *metrics.Metrics
}

// NewSuggestionService - generator가 nil이면 AI 제안 비활성화 상태로 동작
func NewSuggestionService(generator Generator, timeout time.Duration, m *metrics.Metrics) *SuggestionService {
	return &SuggestionService{
		generator: generator,
		timeout:   timeout,
		metrics:   m,
	}
}

func (s *SuggestionService) Enabled() bool {
	return s.generator != nil
}

// Suggest - 알림에 대한 조치 제안과 신뢰도 반환 (에러를 반환하지 않음)
func (s *SuggestionService) Suggest(ctx context.Context, info model.AlertInfo) model.Suggestion {
	if s.generator == nil {
		return model.Suggestion{Text: disabledSuggestion}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(info))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptySuggestion
	}
	if err != nil {
		logging.Error("Error getting AI suggestion", zap.String("alertname", info.Name()), zap.Error(err))
		return model.Suggestion{Text: fmt.Sprintf("Error generating AI suggestion: %v", err)}
	}

	suggestion := ParseSuggestion(text)
	s.metrics.ObserveConfidence(suggestion.Confidence)
	return suggestion
}

// BuildPrompt - 알림 정보를 들여쓰기된 JSON으로 포함한 프롬프트 생성
func BuildPrompt(info model.AlertInfo) string {
	alertJSON, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		alertJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are an AI-powered DevOps engineer. You've received the following alert:\n\n")
	b.Write(alertJSON)
	b.WriteString("\n\nBased on this alert, please suggest:\n")
	b.WriteString("1. What might be causing this issue\n")
	b.WriteString("2. Steps to remediate the problem\n")
	b.WriteString("3. How to prevent this in the future\n\n")
	b.WriteString("Keep your suggestion concise and actionable. If you can suggest specific commands, please do so.\n")
	b.WriteString("Start your response with a confidence score between 0 and 1 on a separate line (e.g. \"CONFIDENCE: 0.8\"),\n")
	b.WriteString("indicating how confident you are in your suggestion.\n")
	return b.String()
}

// ParseSuggestion - 응답에서 신뢰도 라인을 분리
//
//   - 첫 번째 CONFIDENCE 라인만 사용하고, 해당 라인(개행 포함)을 본문에서 제거
//   - 제거한 라인이 맨 앞이었을 때만 뒤따르는 빈 줄을 정리
//   - [0, 1] 범위를 벗어나거나 해석할 수 없는 값은 0.0
//   - CONFIDENCE 라인이 없으면 본문은 그대로, 신뢰도는 0.0
func ParseSuggestion(text string) model.Suggestion {
	loc := confidencePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return model.Suggestion{Text: text}
	}

	confidence := clampConfidence(text[loc[2]:loc[3]])

	lineStart := strings.LastIndexByte(text[:loc[0]], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[loc[1]:], '\n'); i >= 0 {
		lineEnd = loc[1] + i + 1
	}
	body := text[:lineStart] + text[lineEnd:]
	if lineStart == 0 {
		body = trimLeadingBlankLines(body)
	}

	return model.Suggestion{Text: body, Confidence: confidence}
}

func clampConfidence(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || value < 0 || value > 1 {
		return 0
	}
	return value
}

func trimLeadingBlankLines(s string) string {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[:i]) != "" {
			return s
		}
		s = s[i+1:]
	}
}

// firstLine - 응답 요약용 첫 줄
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

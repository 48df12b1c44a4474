// Gemini(genai) API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - GEMINI_API_KEY: API 키 (없으면 클라이언트를 만들지 않고 AI 제안 비활성화)
//   - GEMINI_MODEL: 텍스트 생성 모델 (default: gemini-2.0-flash-lite)
//   - GEMINI_EMBEDDING_MODEL: 임베딩 모델 (default: text-embedding-004)

package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/kube-rca/incident-bot/internal/config"
	"google.golang.org/genai"
)

type GenAIClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func NewGenAIClient(ctx context.Context, cfg config.GenAIConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	return &GenAIClient{client: client, model: model, embeddingModel: embeddingModel}, nil
}

// Generate - 프롬프트로 텍스트 생성 (동기)
func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if res == nil {
		return "", fmt.Errorf("empty generation result")
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty generation result")
	}
	return text, nil
}

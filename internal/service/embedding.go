package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
)

var ErrSimilarityUnavailable = errors.New("similar alert lookup unavailable")

type EmbeddingRepo interface {
	UpdateAlertEmbedding(ctx context.Context, id uuid.UUID, model string, vector []float32) error
	FindSimilarAlerts(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarAlert, error)
}

type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type EmbeddingService struct {
	repo   EmbeddingRepo
	client EmbeddingClient
}

func NewEmbeddingService(repo EmbeddingRepo, client EmbeddingClient) *EmbeddingService {
	return &EmbeddingService{repo: repo, client: client}
}

// Enabled - DB와 임베딩 모델이 모두 있어야 사용 가능
func (s *EmbeddingService) Enabled() bool {
	return s != nil && s.repo != nil && s.client != nil
}

// EmbedSuggestion - 미러링된 AlertRecord에 제안 텍스트 임베딩 저장
func (s *EmbeddingService) EmbedSuggestion(ctx context.Context, record model.AlertRecord) (string, error) {
	if !s.Enabled() {
		return "", ErrSimilarityUnavailable
	}
	if record.Suggestion == "" {
		return "", fmt.Errorf("suggestion is required")
	}
	vector, modelName, err := s.client.EmbedText(ctx, record.Suggestion)
	if err != nil {
		return modelName, err
	}
	return modelName, s.repo.UpdateAlertEmbedding(ctx, record.ID, modelName, vector)
}

// FindSimilar - 제안 임베딩 거리 기준 유사 알림
func (s *EmbeddingService) FindSimilar(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarAlert, error) {
	if !s.Enabled() {
		return nil, ErrSimilarityUnavailable
	}
	return s.repo.FindSimilarAlerts(ctx, id, limit)
}

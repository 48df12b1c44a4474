package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/pgvector/pgvector-go"
)

func embeddingUpdateQuery() string {
	return `
		UPDATE alert_records
		SET embedding = $2, embedding_model = $3
		WHERE id = $1
	`
}

func similarAlertsQuery() string {
	return `
		SELECT r.id::text, r.alert_name, r.recorded_at, r.suggestion, r.confidence,
		       r.embedding <=> src.embedding AS distance
		FROM alert_records r, alert_records src
		WHERE src.id = $1
		  AND r.id <> src.id
		  AND r.embedding IS NOT NULL
		  AND src.embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT $2
	`
}

// UpdateAlertEmbedding - 제안 텍스트 임베딩 저장
func (db *Postgres) UpdateAlertEmbedding(ctx context.Context, id uuid.UUID, embeddingModel string, vector []float32) error {
	tag, err := db.Pool.Exec(ctx, embeddingUpdateQuery(), id.String(), pgvector.NewVector(vector), embeddingModel)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s", model.ErrAlertRecordNotFound, id)
	}
	return nil
}

// FindSimilarAlerts - 코사인 거리 기준 유사 알림 조회
// 기준 레코드가 없으면 model.ErrAlertRecordNotFound
func (db *Postgres) FindSimilarAlerts(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarAlert, error) {
	var hasEmbedding bool
	err := db.Pool.QueryRow(ctx, `SELECT embedding IS NOT NULL FROM alert_records WHERE id = $1`, id.String()).Scan(&hasEmbedding)
	if IsNoRows(err) {
		return nil, fmt.Errorf("%w: id=%s", model.ErrAlertRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query alert record: %w", err)
	}
	if !hasEmbedding {
		return []model.SimilarAlert{}, nil
	}

	rows, err := db.Pool.Query(ctx, similarAlertsQuery(), id.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar alerts: %w", err)
	}
	defer rows.Close()

	similar := []model.SimilarAlert{}
	for rows.Next() {
		var (
			rawID      string
			recordedAt time.Time
			item       model.SimilarAlert
		)
		if err := rows.Scan(&rawID, &item.AlertName, &recordedAt, &item.Suggestion, &item.Confidence, &item.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan similar alert: %w", err)
		}
		if item.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("invalid alert record id %q: %w", rawID, err)
		}
		item.Timestamp = recordedAt
		similar = append(similar, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate similar alerts: %w", err)
	}
	return similar, nil
}

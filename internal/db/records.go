package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
)

// EnsureRecordSchema - alert_records / healing_actions 테이블 생성
func (db *Postgres) EnsureRecordSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`
		CREATE TABLE IF NOT EXISTS alert_records (
			id UUID PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL,
			alert_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'unknown',
			labels JSONB NOT NULL DEFAULT '{}',
			annotations JSONB NOT NULL DEFAULT '{}',
			suggestion TEXT NOT NULL DEFAULT '',
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			healing_result TEXT NOT NULL DEFAULT '',
			healing_success BOOLEAN NOT NULL DEFAULT FALSE,
			embedding vector,
			embedding_model TEXT NOT NULL DEFAULT ''
		)
		`,
		`CREATE INDEX IF NOT EXISTS alert_records_recorded_at_idx ON alert_records(recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alert_records_alert_name_idx ON alert_records(alert_name)`,
		`
		CREATE TABLE IF NOT EXISTS healing_actions (
			id UUID PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL,
			alert_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'unknown',
			labels JSONB NOT NULL DEFAULT '{}',
			annotations JSONB NOT NULL DEFAULT '{}',
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			action TEXT NOT NULL DEFAULT '',
			success BOOLEAN NOT NULL DEFAULT FALSE
		)
		`,
		`CREATE INDEX IF NOT EXISTS healing_actions_recorded_at_idx ON healing_actions(recorded_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure record schema: %w", err)
		}
	}
	return nil
}

func alertRecordInsertQuery() string {
	return `
		INSERT INTO alert_records (
			id, recorded_at, alert_name, status, labels, annotations,
			suggestion, confidence, healing_result, healing_success
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
}

func healingActionInsertQuery() string {
	return `
		INSERT INTO healing_actions (
			id, recorded_at, alert_name, status, labels, annotations,
			confidence, action, success
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
}

// SaveAlertRecord - AlertRecord 미러링 (append-only, 동일 id 재삽입은 무시)
func (db *Postgres) SaveAlertRecord(ctx context.Context, record model.AlertRecord) error {
	labels, annotations, err := marshalAlertMaps(record.AlertInfo)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, alertRecordInsertQuery(),
		record.ID.String(),
		record.Timestamp,
		record.AlertInfo.Name(),
		string(record.AlertInfo.Status),
		labels,
		annotations,
		record.Suggestion,
		record.Confidence,
		record.HealingResult,
		record.HealingSuccess,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert record: %w", err)
	}
	return nil
}

// SaveHealingAction - HealingActionRecord 미러링
func (db *Postgres) SaveHealingAction(ctx context.Context, record model.HealingActionRecord) error {
	labels, annotations, err := marshalAlertMaps(record.Alert)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx, healingActionInsertQuery(),
		record.ID.String(),
		record.Timestamp,
		record.Alert.Name(),
		string(record.Alert.Status),
		labels,
		annotations,
		record.Confidence,
		record.Action,
		record.Success,
	)
	if err != nil {
		return fmt.Errorf("failed to insert healing action: %w", err)
	}
	return nil
}

// ListAlertRecords - 최근 AlertRecord 목록 (최신순)
func (db *Postgres) ListAlertRecords(ctx context.Context, limit int) ([]model.AlertRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id::text, recorded_at, status, labels, annotations,
		       suggestion, confidence, healing_result, healing_success
		FROM alert_records
		ORDER BY recorded_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert records: %w", err)
	}
	defer rows.Close()

	records := []model.AlertRecord{}
	for rows.Next() {
		var (
			id              string
			recordedAt      time.Time
			status          string
			labelsJSON      []byte
			annotationsJSON []byte
			record          model.AlertRecord
		)
		if err := rows.Scan(&id, &recordedAt, &status, &labelsJSON, &annotationsJSON,
			&record.Suggestion, &record.Confidence, &record.HealingResult, &record.HealingSuccess); err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}
		if record.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid alert record id %q: %w", id, err)
		}
		record.Timestamp = recordedAt
		record.AlertInfo.Status = model.ParseAlertStatus(status)
		if err := json.Unmarshal(labelsJSON, &record.AlertInfo.Labels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
		}
		if err := json.Unmarshal(annotationsJSON, &record.AlertInfo.Annotations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal annotations: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert records: %w", err)
	}
	return records, nil
}

func marshalAlertMaps(info model.AlertInfo) ([]byte, []byte, error) {
	labels, err := json.Marshal(nonNil(info.Labels))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal labels: %w", err)
	}
	annotations, err := json.Marshal(nonNil(info.Annotations))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal annotations: %w", err)
	}
	return labels, annotations, nil
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

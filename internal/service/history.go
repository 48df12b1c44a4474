package service

import (
	"context"

	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/model"
	"go.uber.org/zap"
)

const (
	HistorySourceDB   = "database"
	HistorySourceFile = "file"
)

type RecordReader interface {
	ReadAlertRecords(limit int) ([]model.AlertRecord, error)
}

type RecordLister interface {
	ListAlertRecords(ctx context.Context, limit int) ([]model.AlertRecord, error)
}

// HistoryService - 최근 처리 이력 조회 (DB 우선, 실패 시 로컬 파일)
type HistoryService struct {
	file RecordReader
	db   RecordLister
}

func NewHistoryService(file RecordReader) *HistoryService {
	return &HistoryService{file: file}
}

func (s *HistoryService) SetDB(db RecordLister) {
	s.db = db
}

// Recent - 최신순 레코드와 조회 출처 반환
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]model.AlertRecord, string, error) {
	if s.db != nil {
		records, err := s.db.ListAlertRecords(ctx, limit)
		if err == nil {
			return records, HistorySourceDB, nil
		}
		logging.Warn("Failed to list alert records from DB, falling back to file", zap.Error(err))
	}

	records, err := s.file.ReadAlertRecords(limit)
	if err != nil {
		return nil, HistorySourceFile, err
	}
	return records, HistorySourceFile, nil
}

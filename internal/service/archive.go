// S3 아카이빙
//
// 두 가지 업로드 경로:
//  1. Run: 시작 직후 1회 + S3_UPLOAD_INTERVAL 마다 로그 파일과 레코드 파일 스냅샷 업로드
//  2. UploadAlertRecord: 알림 처리 직후 해당 레코드를 비동기로 업로드
//
// 키 형식 (ts = 20060102-150405):
//   - <prefix>logs/<ts>-<log file name>
//   - <prefix>data/<ts>-<record file name>
//   - <prefix>alerts/<ts>-<alertname 소문자>.json
//
// 업로드 실패는 로그와 메트릭으로만 남기고 루프는 계속 진행한다.

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kube-rca/incident-bot/internal/logging"
	"github.com/kube-rca/incident-bot/internal/metrics"
	"github.com/kube-rca/incident-bot/internal/model"
	"go.uber.org/zap"
)

const (
	archiveTimestampLayout = "20060102-150405"
	alertUploadTimeout     = 60 * time.Second
)

// ObjectStore - 원격 오브젝트 스토리지 (client.S3Client)
type ObjectStore interface {
	PutFile(ctx context.Context, localPath, key string) error
	PutBytes(ctx context.Context, data []byte, key, contentType string) error
}

type ArchiveService struct {
	store     ObjectStore
	prefix    string
	interval  time.Duration
	logFile   string
	dataFiles []string
	metrics   *metrics.Metrics
	now       func() time.Time

	// 진행 중인 알림 단건 업로드 (종료 시 drain)
	inflight sync.WaitGroup
}

// NewArchiveService - store가 nil이면 아카이빙 비활성화 (모든 메서드 no-op)
func NewArchiveService(store ObjectStore, prefix string, interval time.Duration, logFile string, dataFiles []string, m *metrics.Metrics) *ArchiveService {
	return &ArchiveService{
		store:     store,
		prefix:    prefix,
		interval:  interval,
		logFile:   logFile,
		dataFiles: dataFiles,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *ArchiveService) Enabled() bool {
	return s != nil && s.store != nil
}

// Run - ctx가 취소될 때까지 주기적으로 RunCycle 실행
func (s *ArchiveService) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	logging.Info("Starting S3 archive loop", zap.Duration("interval", s.interval))

	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("S3 archive loop stopped")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle - 비어있지 않은 파일마다 타임스탬프가 붙은 사본 1개 업로드
// 업로드에 성공한 파일 수 반환
func (s *ArchiveService) RunCycle(ctx context.Context) int {
	if !s.Enabled() {
		return 0
	}

	ts := s.now().Format(archiveTimestampLayout)
	uploaded := 0

	if s.logFile != "" && s.uploadSnapshot(ctx, "logs", s.logFile, ts) {
		uploaded++
	}
	for _, path := range s.dataFiles {
		if s.uploadSnapshot(ctx, "data", path, ts) {
			uploaded++
		}
	}
	return uploaded
}

func (s *ArchiveService) uploadSnapshot(ctx context.Context, kind, path, ts string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Failed to stat file for upload", zap.String("path", path), zap.Error(err))
		}
		return false
	}
	if info.Size() == 0 {
		return false
	}

	key := fmt.Sprintf("%s%s/%s-%s", s.prefix, kind, ts, filepath.Base(path))
	err = s.store.PutFile(ctx, path, key)
	s.metrics.ObserveUpload(kind, err)
	if err != nil {
		logging.Error("Error uploading file to S3", zap.String("path", path), zap.String("key", key), zap.Error(err))
		return false
	}

	logging.Info("Uploaded file to S3", zap.String("path", path), zap.String("key", key))
	return true
}

// UploadAlertRecord - 처리된 알림 1건을 비동기로 업로드 (응답에는 영향 없음)
func (s *ArchiveService) UploadAlertRecord(record model.AlertRecord) {
	if !s.Enabled() {
		return
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		logging.Error("Failed to marshal alert record for upload", zap.String("id", record.ID.String()), zap.Error(err))
		return
	}
	key := fmt.Sprintf("%salerts/%s-%s.json",
		s.prefix, s.now().Format(archiveTimestampLayout), strings.ToLower(record.AlertInfo.Name()))

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Panic while uploading alert record", zap.Any("panic", r), zap.String("key", key))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), alertUploadTimeout)
		defer cancel()

		err := s.store.PutBytes(ctx, data, key, "application/json")
		s.metrics.ObserveUpload("alerts", err)
		if err != nil {
			logging.Error("Error uploading alert record to S3", zap.String("key", key), zap.Error(err))
			return
		}
		logging.Info("Uploaded alert record to S3", zap.String("key", key))
	}()
}

// Wait - 진행 중인 단건 업로드가 끝날 때까지 대기 (ctx 만료 시 중단)
func (s *ArchiveService) Wait(ctx context.Context) error {
	if s == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for alert uploads: %w", ctx.Err())
	}
}

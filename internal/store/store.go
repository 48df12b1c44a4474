// Package store is the local system of record: two newline-delimited JSON
// append logs, one for alert records and one for healing action records.
//
// 각 append는 완전한 한 줄(+개행)을 단일 Write로 기록한다.
// 여러 goroutine이 동시에 append 해도 줄이 섞이지 않는다.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/kube-rca/incident-bot/internal/model"
)

type FileStore struct {
	mu          sync.Mutex
	alertsPath  string
	healingPath string
}

// New - 두 파일 경로로 FileStore 생성
// 디렉터리가 쓰기 가능한지 시작 시점에 확인하기 위해 파일을 미리 생성한다.
func New(alertsPath, healingPath string) (*FileStore, error) {
	for _, path := range []string{alertsPath, healingPath} {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open record file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close record file %s: %w", path, err)
		}
	}
	return &FileStore{alertsPath: alertsPath, healingPath: healingPath}, nil
}

func (s *FileStore) AppendAlert(record model.AlertRecord) error {
	return s.appendLine(s.alertsPath, record)
}

func (s *FileStore) AppendHealingAction(record model.HealingActionRecord) error {
	return s.appendLine(s.healingPath, record)
}

// Paths - 아카이빙 대상 파일 목록
func (s *FileStore) Paths() []string {
	return []string{s.alertsPath, s.healingPath}
}

func (s *FileStore) appendLine(path string, record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return f.Close()
}

// ReadAlertRecords - 가장 최근 limit 건 (최신순)
// 해석할 수 없는 줄은 건너뛴다.
func (s *FileStore) ReadAlertRecords(limit int) ([]model.AlertRecord, error) {
	f, err := os.Open(s.alertsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.AlertRecord{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.alertsPath, err)
	}
	defer f.Close()

	var records []model.AlertRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var record model.AlertRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
		if limit > 0 && len(records) > limit {
			records = records[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.alertsPath, err)
	}

	out := make([]model.AlertRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

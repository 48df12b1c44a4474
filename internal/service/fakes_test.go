package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

// blockingGenerator - ctx가 끝날 때까지 대기
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// ctxGenerator - ctx가 이미 끝났으면 ctx 에러 반환
type ctxGenerator struct {
	text string
}

func (g ctxGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.text, nil
}

type fakeRecordStore struct {
	mu      sync.Mutex
	alerts  []model.AlertRecord
	healing []model.HealingActionRecord
	err     error
}

func (f *fakeRecordStore) AppendAlert(record model.AlertRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, record)
	return nil
}

func (f *fakeRecordStore) AppendHealingAction(record model.HealingActionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.healing = append(f.healing, record)
	return nil
}

func (f *fakeRecordStore) ReadAlertRecords(limit int) ([]model.AlertRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alerts, f.err
}

type fakePoster struct {
	configured bool
	err        error
	messages   []string
}

func (f *fakePoster) IsConfigured() bool {
	return f.configured
}

func (f *fakePoster) Post(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.messages = append(f.messages, text)
	return f.err
}

type putCall struct {
	key         string
	localPath   string
	data        []byte
	contentType string
}

type fakeObjectStore struct {
	mu    sync.Mutex
	calls []putCall
	err   error
}

func (f *fakeObjectStore) PutFile(ctx context.Context, localPath, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{key: key, localPath: localPath})
	return f.err
}

func (f *fakeObjectStore) PutBytes(ctx context.Context, data []byte, key, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{key: key, data: data, contentType: contentType})
	return f.err
}

func (f *fakeObjectStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		keys = append(keys, c.key)
	}
	return keys
}

type fakeMirror struct {
	alerts  []model.AlertRecord
	healing []model.HealingActionRecord
	err     error
}

func (f *fakeMirror) SaveAlertRecord(ctx context.Context, record model.AlertRecord) error {
	f.alerts = append(f.alerts, record)
	return f.err
}

func (f *fakeMirror) SaveHealingAction(ctx context.Context, record model.HealingActionRecord) error {
	f.healing = append(f.healing, record)
	return f.err
}

func (f *fakeMirror) ListAlertRecords(ctx context.Context, limit int) ([]model.AlertRecord, error) {
	return f.alerts, f.err
}

type fakeEmbeddingClient struct {
	err error
}

func (f *fakeEmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	if f.err != nil {
		return nil, "text-embedding-004", f.err
	}
	return []float32{0.1}, "text-embedding-004", nil
}

type fakeEmbeddingRepo struct {
	updated map[uuid.UUID]string
	similar []model.SimilarAlert
}

func (f *fakeEmbeddingRepo) UpdateAlertEmbedding(ctx context.Context, id uuid.UUID, model string, vector []float32) error {
	if f.updated == nil {
		f.updated = map[uuid.UUID]string{}
	}
	if len(vector) == 0 {
		return errors.New("empty vector")
	}
	f.updated[id] = model
	return nil
}

func (f *fakeEmbeddingRepo) FindSimilarAlerts(ctx context.Context, id uuid.UUID, limit int) ([]model.SimilarAlert, error) {
	return f.similar, nil
}

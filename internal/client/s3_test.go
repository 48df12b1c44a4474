package client

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kube-rca/incident-bot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(params.Key)
	f.contentType = aws.ToString(params.ContentType)
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3ClientRequiresTrio(t *testing.T) {
	_, err := NewS3Client(context.Background(), config.S3Config{AccessKeyID: "id", Region: "us-east-1"})
	assert.Error(t, err)
}

func TestS3PutFileSnapshotsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts_processed.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n"), 0o644))

	fake := &fakeS3{}
	c := &S3Client{api: fake, bucket: "bucket"}

	require.NoError(t, c.PutFile(context.Background(), path, "incident-bot-logs/data/20250101-000000-alerts_processed.jsonl"))
	assert.Equal(t, "incident-bot-logs/data/20250101-000000-alerts_processed.jsonl", fake.key)
	assert.Equal(t, "application/x-ndjson", fake.contentType)
	assert.Equal(t, "{\"a\":1}\n", string(fake.body))
}

func TestS3PutFileMissing(t *testing.T) {
	c := &S3Client{api: &fakeS3{}, bucket: "bucket"}
	assert.Error(t, c.PutFile(context.Background(), filepath.Join(t.TempDir(), "nope.log"), "k"))
}

func TestS3PutBytesError(t *testing.T) {
	c := &S3Client{api: &fakeS3{err: errors.New("access denied")}, bucket: "bucket"}
	err := c.PutBytes(context.Background(), []byte("{}"), "k.json", "application/json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/k.json")
}

// S3 오브젝트 스토리지 클라이언트 정의
//
// 환경변수:
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: 정적 자격 증명
//   - AWS_REGION: 리전 (default: us-east-1)
//   - S3_BUCKET_NAME: 업로드 대상 버킷
//
// 세 값 중 하나라도 없으면 클라이언트를 만들지 않는다 (아카이빙 비활성화).

package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kube-rca/incident-bot/internal/config"
)

// s3API - 테스트에서 대체 가능한 PutObject 호출부
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Client struct {
	api    s3API
	bucket string
}

func NewS3Client(ctx context.Context, cfg config.S3Config) (*S3Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("incomplete S3 configuration: missing %v", cfg.Missing())
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &S3Client{api: s3.NewFromConfig(awsCfg), bucket: cfg.Bucket}, nil
}

func (c *S3Client) Bucket() string {
	return c.bucket
}

// PutFile - 로컬 파일을 업로드
// 다른 goroutine이 append 중일 수 있으므로 먼저 메모리로 스냅샷을 뜬 뒤 전송한다.
func (c *S3Client) PutFile(ctx context.Context, localPath, key string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return c.PutBytes(ctx, data, key, contentTypeFor(localPath))
}

// PutBytes - 메모리 데이터를 업로드
func (c *S3Client) PutBytes(ctx context.Context, data []byte, key, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".jsonl":
		return "application/x-ndjson"
	case ".json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

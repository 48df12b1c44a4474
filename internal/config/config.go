// 프로세스 설정 정의
//
// 시작 시 한 번만 Load()로 생성하고, 이후에는 각 컴포넌트 생성자에 값으로 전달한다.
// 어떤 컴포넌트도 환경변수를 직접 읽지 않는다.
//
// 환경변수:
//   - HOST / PORT: 리스닝 주소 (default: 0.0.0.0:8000)
//   - GEMINI_API_KEY: 없으면 AI 제안 비활성화
//   - SLACK_WEBHOOK: 없으면 Slack 알림 비활성화
//   - SELF_HEALING_ENABLED / SELF_HEALING_CONFIDENCE_THRESHOLD
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / S3_BUCKET_NAME: 셋 중 하나라도 없으면 S3 업로드 비활성화
//   - DATABASE_URL 또는 PGUSER/PGDATABASE: 있으면 Postgres 미러 활성화

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig
	GenAI    GenAIConfig
	Slack    SlackConfig
	Healing  HealingConfig
	S3       S3Config
	Storage  StorageConfig
	Postgres PostgresConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type GenAIConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

type SlackConfig struct {
	WebhookURL   string
	TemplateFile string
}

type HealingConfig struct {
	Enabled   bool
	Threshold float64
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Prefix          string
	UploadInterval  time.Duration
}

type StorageConfig struct {
	DataDir string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type LogConfig struct {
	Level string
	File  string
}

// Load - 환경변수(+기본값)에서 Config 생성
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	threshold, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("SELF_HEALING_CONFIDENCE_THRESHOLD")), 64)
	if err != nil {
		return Config{}, fmt.Errorf("%w: SELF_HEALING_CONFIDENCE_THRESHOLD must be a number", ErrInvalidConfig)
	}
	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("PORT")))
	if err != nil {
		return Config{}, fmt.Errorf("%w: PORT must be an integer", ErrInvalidConfig)
	}
	intervalSec, err := strconv.Atoi(strings.TrimSpace(v.GetString("S3_UPLOAD_INTERVAL")))
	if err != nil {
		return Config{}, fmt.Errorf("%w: S3_UPLOAD_INTERVAL must be an integer (seconds)", ErrInvalidConfig)
	}
	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("SUGGESTION_TIMEOUT")))
	if err != nil {
		return Config{}, fmt.Errorf("%w: SUGGESTION_TIMEOUT must be a duration", ErrInvalidConfig)
	}

	cfg := Config{
		Server: ServerConfig{
			Host: v.GetString("HOST"),
			Port: port,
		},
		GenAI: GenAIConfig{
			APIKey:         v.GetString("GEMINI_API_KEY"),
			Model:          v.GetString("GEMINI_MODEL"),
			EmbeddingModel: v.GetString("GEMINI_EMBEDDING_MODEL"),
			Timeout:        timeout,
		},
		Slack: SlackConfig{
			WebhookURL:   v.GetString("SLACK_WEBHOOK"),
			TemplateFile: v.GetString("NOTIFY_TEMPLATE_FILE"),
		},
		Healing: HealingConfig{
			Enabled:   strings.EqualFold(strings.TrimSpace(v.GetString("SELF_HEALING_ENABLED")), "true"),
			Threshold: threshold,
		},
		S3: S3Config{
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Region:          v.GetString("AWS_REGION"),
			Bucket:          v.GetString("S3_BUCKET_NAME"),
			Prefix:          v.GetString("S3_LOG_PREFIX"),
			UploadInterval:  time.Duration(intervalSec) * time.Second,
		},
		Storage: StorageConfig{
			DataDir: v.GetString("DATA_DIR"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("PGHOST"),
			Port:        v.GetString("PGPORT"),
			User:        v.GetString("PGUSER"),
			Password:    v.GetString("PGPASSWORD"),
			Database:    v.GetString("PGDATABASE"),
			SSLMode:     v.GetString("PGSSLMODE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash-lite")
	v.SetDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("SUGGESTION_TIMEOUT", "30s")
	v.SetDefault("SELF_HEALING_ENABLED", "false")
	v.SetDefault("SELF_HEALING_CONFIDENCE_THRESHOLD", "0.8")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_LOG_PREFIX", "incident-bot-logs/")
	v.SetDefault("S3_UPLOAD_INTERVAL", "300")
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("PGHOST", "localhost")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGSSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "incident_bot.log")

	// AutomaticEnv는 Get 시점에만 조회하므로 기본값 없는 키도 명시적으로 바인딩
	for _, key := range []string{
		"GEMINI_API_KEY", "SLACK_WEBHOOK", "NOTIFY_TEMPLATE_FILE",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_BUCKET_NAME",
		"DATABASE_URL", "PGUSER", "PGPASSWORD", "PGDATABASE",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate - 잘못된 값은 치명적 오류로 처리 (누락된 선택 설정은 Warnings에서 경고만)
func (c Config) Validate() error {
	if c.Healing.Threshold < 0 || c.Healing.Threshold > 1 {
		return fmt.Errorf("%w: SELF_HEALING_CONFIDENCE_THRESHOLD must be within [0, 1], got %v", ErrInvalidConfig, c.Healing.Threshold)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: PORT out of range: %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.S3.UploadInterval <= 0 {
		return fmt.Errorf("%w: S3_UPLOAD_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.GenAI.Timeout <= 0 {
		return fmt.Errorf("%w: SUGGESTION_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("%w: DATA_DIR must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Warnings - 선택 설정 누락 목록 (시작 시 로그로만 남김)
func (c Config) Warnings() []string {
	var warnings []string
	if !c.AIEnabled() {
		warnings = append(warnings, "GEMINI_API_KEY not set. AI suggestions will be disabled.")
	}
	if c.Slack.WebhookURL == "" {
		warnings = append(warnings, "SLACK_WEBHOOK not set. Slack notifications will be skipped.")
	}
	if missing := c.S3.Missing(); len(missing) > 0 {
		if len(missing) < 3 {
			warnings = append(warnings, fmt.Sprintf("Incomplete S3 configuration. Missing: %s", strings.Join(missing, ", ")))
		}
		warnings = append(warnings, "S3 credentials not provided. Log uploads to S3 will be disabled.")
	}
	return warnings
}

func (c Config) AIEnabled() bool {
	return c.GenAI.APIKey != ""
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c Config) AlertsFile() string {
	return filepath.Join(c.Storage.DataDir, "alerts_processed.jsonl")
}

func (c Config) HealingFile() string {
	return filepath.Join(c.Storage.DataDir, "healing_actions.jsonl")
}

// Missing - S3 필수 3종 중 비어있는 환경변수 이름
func (s S3Config) Missing() []string {
	var missing []string
	if s.AccessKeyID == "" {
		missing = append(missing, "AWS_ACCESS_KEY_ID")
	}
	if s.SecretAccessKey == "" {
		missing = append(missing, "AWS_SECRET_ACCESS_KEY")
	}
	if s.Bucket == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	return missing
}

func (s S3Config) Enabled() bool {
	return len(s.Missing()) == 0
}

// Enabled - DATABASE_URL 또는 PGUSER/PGDATABASE가 설정된 경우에만 미러 사용
func (p PostgresConfig) Enabled() bool {
	return p.DatabaseURL != "" || (p.User != "" && p.Database != "")
}

// URL - 접속 DSN 생성
func (p PostgresConfig) URL() (string, error) {
	if p.DatabaseURL != "" {
		return p.DatabaseURL, nil
	}
	if p.User == "" || p.Database == "" {
		return "", fmt.Errorf("missing required env: DATABASE_URL or PGUSER/PGDATABASE")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, p.Port),
		Path:   p.Database,
	}
	if p.Password == "" {
		u.User = url.User(p.User)
	} else {
		u.User = url.UserPassword(p.User, p.Password)
	}
	q := u.Query()
	q.Set("sslmode", p.SSLMode)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

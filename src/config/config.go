package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config アプリケーション設定
type Config struct {
	Server ServerConfig
	Notion NotionConfig
	Auth   AuthConfig
	Log    LogConfig
	S3     S3Config
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port            string
	RateLimitPerMin int
}

// NotionConfig 外部ドキュメントサービスの設定
type NotionConfig struct {
	APIKey          string
	DatabaseID      string
	TagProperty     string
	ContentProperty string
	BaseURL         string
	Timeout         time.Duration
}

// AuthConfig 受信リクエスト認証の設定（トークンが空なら無効）
type AuthConfig struct {
	Token string
}

// LogConfig ログ設定
type LogConfig struct {
	Level          string
	Directory      string
	UploadEnabled  bool
	UploadMaxAge   time.Duration
	UploadInterval time.Duration
}

// S3Config ログアップロード先のS3互換ストレージ設定
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// LoadConfig は config.json と環境変数から設定を読み込む。
// 環境変数が設定ファイルより優先される。
func LoadConfig() (*Config, error) {
	// .env があれば読み込む（無くてもエラーにしない）
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("port"),
			RateLimitPerMin: v.GetInt("rateLimitPerMin"),
		},
		Notion: NotionConfig{
			APIKey:          v.GetString("notionApiKey"),
			DatabaseID:      v.GetString("databaseId"),
			TagProperty:     v.GetString("tagProperty"),
			ContentProperty: v.GetString("contentProperty"),
			BaseURL:         v.GetString("notionBaseUrl"),
			Timeout:         v.GetDuration("notionTimeout"),
		},
		Auth: AuthConfig{
			Token: v.GetString("authToken"),
		},
		Log: LogConfig{
			Level:          v.GetString("logLevel"),
			Directory:      v.GetString("logDirectory"),
			UploadEnabled:  v.GetBool("logUploadEnabled"),
			UploadMaxAge:   v.GetDuration("logUploadMaxAge"),
			UploadInterval: v.GetDuration("logUploadInterval"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("s3Endpoint"),
			AccessKeyID:     v.GetString("s3AccessKeyId"),
			SecretAccessKey: v.GetString("s3SecretAccessKey"),
			Region:          v.GetString("s3Region"),
			Bucket:          v.GetString("s3Bucket"),
			UseSSL:          v.GetBool("s3UseSsl"),
		},
	}

	applyEnvOverrides(v, cfg)
	return cfg, nil
}

// Validate は必須設定を検証する。欠落は起動時の致命的エラーであり、
// HTTPエラーとしては返さない。
func (c *Config) Validate() error {
	if c.Notion.APIKey == "" {
		return errors.New("NOTION_API_KEY が設定されていません")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("NOTION_DATABASE_ID が設定されていません")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("rateLimitPerMin", 120)
	v.SetDefault("tagProperty", "Tags")
	v.SetDefault("contentProperty", "Content")
	v.SetDefault("notionTimeout", 30*time.Second)
	v.SetDefault("logLevel", "info")
	v.SetDefault("logDirectory", "logs")
	v.SetDefault("logUploadEnabled", false)
	v.SetDefault("logUploadMaxAge", 24*time.Hour)
	v.SetDefault("logUploadInterval", time.Hour)
	v.SetDefault("s3Region", "us-east-1")
	v.SetDefault("s3Bucket", "memo-notion-api-logs")
}

// applyEnvOverrides はフラットな環境変数を設定ファイルのキーに重ねる
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if s := v.GetString("PORT"); s != "" {
		cfg.Server.Port = s
	}
	if n := v.GetInt("RATE_LIMIT_PER_MIN"); n != 0 {
		cfg.Server.RateLimitPerMin = n
	}
	if s := v.GetString("NOTION_API_KEY"); s != "" {
		cfg.Notion.APIKey = s
	}
	if s := v.GetString("NOTION_DATABASE_ID"); s != "" {
		cfg.Notion.DatabaseID = s
	}
	if s := v.GetString("NOTION_TAG_PROPERTY"); s != "" {
		cfg.Notion.TagProperty = s
	}
	if s := v.GetString("NOTION_CONTENT_PROPERTY"); s != "" {
		cfg.Notion.ContentProperty = s
	}
	if s := v.GetString("NOTION_BASE_URL"); s != "" {
		cfg.Notion.BaseURL = s
	}
	if d := v.GetDuration("NOTION_TIMEOUT"); d != 0 {
		cfg.Notion.Timeout = d
	}
	if s := v.GetString("AUTH_TOKEN"); s != "" {
		cfg.Auth.Token = s
	}
	if s := v.GetString("LOG_LEVEL"); s != "" {
		cfg.Log.Level = s
	}
	if s := v.GetString("LOG_DIRECTORY"); s != "" {
		cfg.Log.Directory = s
	}
	if v.IsSet("LOG_UPLOAD_ENABLED") {
		cfg.Log.UploadEnabled = v.GetBool("LOG_UPLOAD_ENABLED")
	}
	if d := v.GetDuration("LOG_UPLOAD_MAX_AGE"); d != 0 {
		cfg.Log.UploadMaxAge = d
	}
	if d := v.GetDuration("LOG_UPLOAD_INTERVAL"); d != 0 {
		cfg.Log.UploadInterval = d
	}
	if s := v.GetString("S3_ENDPOINT"); s != "" {
		cfg.S3.Endpoint = s
	}
	if s := v.GetString("S3_ACCESS_KEY_ID"); s != "" {
		cfg.S3.AccessKeyID = s
	}
	if s := v.GetString("S3_SECRET_ACCESS_KEY"); s != "" {
		cfg.S3.SecretAccessKey = s
	}
	if s := v.GetString("S3_REGION"); s != "" {
		cfg.S3.Region = s
	}
	if s := v.GetString("S3_BUCKET"); s != "" {
		cfg.S3.Bucket = s
	}
	if v.IsSet("S3_USE_SSL") {
		cfg.S3.UseSSL = v.GetBool("S3_USE_SSL")
	}
}

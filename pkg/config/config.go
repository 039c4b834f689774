package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Kiwoom KiwoomConfig
	Naver  NaverConfig
	AI     AIConfig

	// Pipeline
	Scan    ScanConfig
	Scoring ScoringConfig
	Trading TradingConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// KiwoomConfig holds Kiwoom REST API configuration
type KiwoomConfig struct {
	AppKey    string
	AppSecret string
	AccountNo string
	BaseURL   string
	IsVirtual bool // 모의투자 여부
}

// NaverConfig holds Naver Finance fallback feed configuration
type NaverConfig struct {
	BaseURL string
}

// AIConfig holds the stock analyzer endpoint configuration
type AIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ScanConfig holds scan pipeline parameters
// ⭐ SSOT: 스캔 주기/한도/필터 기준은 여기서만
type ScanConfig struct {
	// Stage intervals
	FastInterval time.Duration // 1단계 주기 (기본 10초)
	DeepInterval time.Duration // 2단계 주기 (기본 60초)
	AIInterval   time.Duration // 3단계 주기 (기본 300초)

	// Per-stage candidate caps
	FastMaxCandidates int // 기본 50
	DeepMaxCandidates int // 기본 20

	// Screening filter passed to the external screener
	MinPrice     int64
	MaxPrice     int64
	MinVolume    int64
	MinRate      float64
	MaxRate      float64
	MinMarketCap int64

	// Deep scan hard filter (원 단위)
	MinInstitutionalBuy int64 // 기관 순매수 최소값, 외국인은 절반 적용
}

// ScoringConfig holds scoring system parameters
type ScoringConfig struct {
	CacheTTL      time.Duration // 동일 스냅샷 재계산 방지 (기본 30초)
	BatchWorkers  int           // 병렬 채점 워커 수 (기본 4)
	VolatilityMin float64       // 변동성 밴드 하한 (기본 0.02)
	VolatilityMax float64       // 변동성 밴드 상한 (기본 0.15)
}

// TradingConfig holds trading loop parameters
type TradingConfig struct {
	TickInterval    time.Duration // 외부 루프 주기 (기본 60초)
	BuyThreshold    int           // 단독 점수 게이트 임계값 (기본 300)
	AIBuyThreshold  int           // AI=buy 일 때 임계값 (기본 250)
	AIHoldThreshold int           // AI=hold 일 때 임계값 (기본 300)
	OrderBudget     int64         // 1회 주문 예산 (원, 기본 100만)
	PaperTrading    bool          // 모의매매 모드
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8091"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Kiwoom: KiwoomConfig{
			AppKey:    getEnv("KIWOOM_APP_KEY", ""),
			AppSecret: getEnv("KIWOOM_APP_SECRET", ""),
			AccountNo: getEnv("KIWOOM_ACCOUNT_NO", ""),
			BaseURL:   getEnv("KIWOOM_BASE_URL", "https://api.kiwoom.com"),
			IsVirtual: getEnvAsBool("KIWOOM_IS_VIRTUAL", true),
		},

		Naver: NaverConfig{
			BaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
		},

		AI: AIConfig{
			BaseURL: getEnv("AI_BASE_URL", ""),
			APIKey:  getEnv("AI_API_KEY", ""),
			Timeout: getEnvAsDuration("AI_TIMEOUT", "30s"),
		},

		Scan: ScanConfig{
			FastInterval:        getEnvAsDuration("SCAN_FAST_INTERVAL", "10s"),
			DeepInterval:        getEnvAsDuration("SCAN_DEEP_INTERVAL", "60s"),
			AIInterval:          getEnvAsDuration("SCAN_AI_INTERVAL", "300s"),
			FastMaxCandidates:   getEnvAsInt("SCAN_FAST_MAX", 50),
			DeepMaxCandidates:   getEnvAsInt("SCAN_DEEP_MAX", 20),
			MinPrice:            getEnvAsInt64("SCAN_MIN_PRICE", 1_000),
			MaxPrice:            getEnvAsInt64("SCAN_MAX_PRICE", 500_000),
			MinVolume:           getEnvAsInt64("SCAN_MIN_VOLUME", 100_000),
			MinRate:             getEnvAsFloat("SCAN_MIN_RATE", 1.0),
			MaxRate:             getEnvAsFloat("SCAN_MAX_RATE", 25.0),
			MinMarketCap:        getEnvAsInt64("SCAN_MIN_MARKET_CAP", 50_000_000_000),
			MinInstitutionalBuy: getEnvAsInt64("SCAN_MIN_INST_BUY", 10_000_000),
		},

		Scoring: ScoringConfig{
			CacheTTL:      getEnvAsDuration("SCORING_CACHE_TTL", "30s"),
			BatchWorkers:  getEnvAsInt("SCORING_BATCH_WORKERS", 4),
			VolatilityMin: getEnvAsFloat("SCORING_VOLATILITY_MIN", 0.02),
			VolatilityMax: getEnvAsFloat("SCORING_VOLATILITY_MAX", 0.15),
		},

		Trading: TradingConfig{
			TickInterval:    getEnvAsDuration("TRADING_TICK_INTERVAL", "60s"),
			BuyThreshold:    getEnvAsInt("TRADING_BUY_THRESHOLD", 300),
			AIBuyThreshold:  getEnvAsInt("TRADING_AI_BUY_THRESHOLD", 250),
			AIHoldThreshold: getEnvAsInt("TRADING_AI_HOLD_THRESHOLD", 300),
			OrderBudget:     getEnvAsInt64("TRADING_ORDER_BUDGET", 1_000_000),
			PaperTrading:    getEnvAsBool("TRADING_PAPER", true),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scan.FastMaxCandidates <= 0 || c.Scan.DeepMaxCandidates <= 0 {
		return fmt.Errorf("scan candidate caps must be positive")
	}

	if c.Scoring.VolatilityMin >= c.Scoring.VolatilityMax {
		return fmt.Errorf("SCORING_VOLATILITY_MIN must be less than SCORING_VOLATILITY_MAX")
	}

	if c.Scoring.BatchWorkers <= 0 {
		return fmt.Errorf("SCORING_BATCH_WORKERS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
}

// LLMConfig LLM 相关配置；provider 为空或 none 时不调用 LLM，全部走模板兜底
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai | azure | gemini | claude | none
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	APIVersion  string  `yaml:"api_version"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     int     `yaml:"timeout"` // 秒
}

// TimeoutDuration returns the request timeout, defaulting to 60s.
func (c LLMConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Enabled 是否配置了 LLM
func (c LLMConfig) Enabled() bool {
	return c.Provider != "" && c.Provider != "none"
}

// DBConfig 存储相关配置
type DBConfig struct {
	Driver     string `yaml:"driver"` // postgres | badger | none
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Source     string `yaml:"source"` // 完整 DSN，非空时优先于分项配置
	BadgerPath string `yaml:"badger_path"`
}

// DSN lib/pq 连接串
func (c DBConfig) DSN() string {
	if c.Source != "" {
		return c.Source
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS     int `yaml:"qps"`
	RPM     int `yaml:"rpm"`
	Workers int `yaml:"workers"`
}

// ExtractionConfig 抽取与输出配置
type ExtractionConfig struct {
	InputDir         string `yaml:"input_dir"`
	OutputDir        string `yaml:"output_dir"`
	GenerateAnalysis bool   `yaml:"generate_analysis"`
	MinImageSize     int    `yaml:"min_image_size"`
}

// LoadConfig 从指定路径加载配置，随后用 .env 与环境变量覆盖敏感项
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	cfg.ApplyEnv()

	return cfg, nil
}

// Default 默认配置
func Default() *Config {
	return &Config{
		LLM: LLMConfig{Provider: "none"},
		Log: LogConfig{Level: "info"},
		Concurrency: ConcurrencyConfig{
			QPS:     1,
			RPM:     60,
			Workers: 2,
		},
		DB: DBConfig{Driver: "none"},
		Extraction: ExtractionConfig{
			OutputDir:        "output/flow",
			GenerateAnalysis: true,
			MinImageSize:     50,
		},
	}
}

// ApplyEnv 环境变量覆盖
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "TREND_RADAR_LLM_PROVIDER")
	setString(&c.LLM.BaseURL, "TREND_RADAR_LLM_BASE_URL")
	setString(&c.LLM.APIKey, "TREND_RADAR_LLM_API_KEY")
	setString(&c.LLM.Model, "TREND_RADAR_LLM_MODEL")
	setString(&c.DB.Password, "TREND_RADAR_DB_PASSWORD")
	setString(&c.DB.Host, "TREND_RADAR_DB_HOST")
	if v := os.Getenv("TREND_RADAR_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.DB.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

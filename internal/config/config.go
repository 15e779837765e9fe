package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/PabloGalante/productibot/internal/adapters/llm"
	"github.com/PabloGalante/productibot/internal/domain"
)

// Slider bounds of the generation settings.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 256
	MaxMaxTokens   = 2048
	MinTopP        = 0.1
	MaxTopP        = 1.0
)

type Config struct {
	APIKey    string `toml:"-"`
	ModelName string `toml:"model_name"`

	UseMockLLM    bool `toml:"use_mock_llm"`
	RetryAttempts int  `toml:"retry_max_attempts"`

	Generation domain.GenerationConfig `toml:"generation"`

	ExportDir string `toml:"export_dir"`
	Addr      string `toml:"addr"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
}

// Configured reports whether a generation provider can be built.
func (c *Config) Configured() bool {
	return c.UseMockLLM || c.APIKey != ""
}

func Default() *Config {
	return &Config{
		ModelName:     llm.DefaultModel,
		RetryAttempts: 1,
		Generation:    domain.DefaultGenerationConfig(),
		ExportDir:     "exports",
		Addr:          "127.0.0.1:8080",
		LogLevel:      "info",
		LogFile:       "productibot.log",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, def float32) (float32, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def, fmt.Errorf("%s: %q is not a finite number", key, v)
	}
	return float32(f), nil
}

// Load builds the config from defaults, then the optional TOML file at path,
// then the environment (a .env file in the working directory is read first
// and never overrides variables that are already set).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Generation = ClampGeneration(cfg.Generation)
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIKey = getEnv("GEMINI_API_KEY", c.APIKey)
	c.ModelName = getEnv("PRODUCTIBOT_MODEL_NAME", c.ModelName)
	c.UseMockLLM = getBoolEnv("PRODUCTIBOT_USE_MOCK_LLM", c.UseMockLLM)
	c.ExportDir = getEnv("PRODUCTIBOT_EXPORT_DIR", c.ExportDir)
	c.Addr = getEnv("PRODUCTIBOT_ADDR", c.Addr)
	c.LogLevel = getEnv("PRODUCTIBOT_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("PRODUCTIBOT_LOG_FILE", c.LogFile)

	var err error
	if c.RetryAttempts, err = getIntEnv("PRODUCTIBOT_RETRY_MAX_ATTEMPTS", c.RetryAttempts); err != nil {
		return err
	}
	if c.Generation.Temperature, err = getFloatEnv("PRODUCTIBOT_TEMPERATURE", c.Generation.Temperature); err != nil {
		return err
	}
	if c.Generation.TopP, err = getFloatEnv("PRODUCTIBOT_TOP_P", c.Generation.TopP); err != nil {
		return err
	}
	maxTokens, err := getIntEnv("PRODUCTIBOT_MAX_TOKENS", int(c.Generation.MaxOutputTokens))
	if err != nil {
		return err
	}
	c.Generation.MaxOutputTokens = ClampMaxTokens(maxTokens)
	return nil
}

// ClampGeneration forces each setting into its slider range. A NaN setting
// falls back to its default. The core never clamps; surfaces call this
// before handing values over.
func ClampGeneration(g domain.GenerationConfig) domain.GenerationConfig {
	def := domain.DefaultGenerationConfig()
	if math.IsNaN(float64(g.Temperature)) {
		g.Temperature = def.Temperature
	}
	if math.IsNaN(float64(g.TopP)) {
		g.TopP = def.TopP
	}
	g.Temperature = clamp(g.Temperature, MinTemperature, MaxTemperature)
	g.TopP = clamp(g.TopP, MinTopP, MaxTopP)
	g.MaxOutputTokens = clamp(g.MaxOutputTokens, MinMaxTokens, MaxMaxTokens)
	return g
}

// ClampMaxTokens clamps n before narrowing it, so oversized input lands on
// the upper bound instead of wrapping.
func ClampMaxTokens(n int) int32 {
	return int32(clamp(n, MinMaxTokens, MaxMaxTokens))
}

func clamp[T float32 | int32 | int](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

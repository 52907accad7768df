package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/programme-lv/pathtester/internal/memmon"
	"github.com/programme-lv/pathtester/internal/xdg"
)

type EnvConfig struct {
	Timeout          time.Duration
	MemoryCeilingMiB uint64
	SampleInterval   time.Duration

	NatsURL     string
	NatsSubject string

	SqsURL    string
	AwsRegion string

	CacheDir string
	LogLevel string
}

func defaults() EnvConfig {
	return EnvConfig{
		Timeout:          30 * time.Second,
		MemoryCeilingMiB: 150,
		SampleInterval:   memmon.DefaultInterval,
		NatsSubject:      "pathtester.results",
		AwsRegion:        "eu-central-1",
		CacheDir:         xdg.CacheDir("pathtester"),
		LogLevel:         "info",
	}
}

// ReadEnvConfig loads the given dotenv files (".env" when none are given) into the
// process environment, skipping files that do not exist, and reads PATHTESTER_*
// variables over the defaults. Variables already set in the environment win over
// dotenv values.
func ReadEnvConfig(files ...string) (*EnvConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := defaults()
	var err error
	if cfg.Timeout, err = durationVar("PATHTESTER_TIMEOUT", cfg.Timeout); err != nil {
		return nil, err
	}
	if cfg.SampleInterval, err = durationVar("PATHTESTER_SAMPLE_INTERVAL", cfg.SampleInterval); err != nil {
		return nil, err
	}
	if v := os.Getenv("PATHTESTER_MEMORY_CEILING_MIB"); v != "" {
		cfg.MemoryCeilingMiB, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PATHTESTER_MEMORY_CEILING_MIB %q: %w", v, err)
		}
	}
	stringVar(&cfg.NatsURL, "PATHTESTER_NATS_URL")
	stringVar(&cfg.NatsSubject, "PATHTESTER_NATS_SUBJECT")
	stringVar(&cfg.SqsURL, "PATHTESTER_SQS_URL")
	stringVar(&cfg.AwsRegion, "AWS_REGION")
	stringVar(&cfg.CacheDir, "PATHTESTER_CACHE_DIR")
	stringVar(&cfg.LogLevel, "PATHTESTER_LOG_LEVEL")
	return &cfg, nil
}

func stringVar(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func durationVar(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, v)
	}
	return d, nil
}

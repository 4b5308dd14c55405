package main

import (
	"os"
	"strings"
	"time"

	"rangequery-bench/bench"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config mirrors the command line flags. A YAML file given with -conf sets
// the defaults; flags given explicitly win.
type Config struct {
	DB          string        `yaml:"db"`
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"password"`
	Database    string        `yaml:"database"`
	SSLMode     string        `yaml:"sslmode"`
	Path        string        `yaml:"path"`
	Range       int           `yaml:"range"`
	TempDB      bool          `yaml:"createTempDatabase"`
	Queries     int           `yaml:"queries"`
	Concurrency int           `yaml:"concurrency"`
	Warmup      int           `yaml:"warmup"`
	Duration    time.Duration `yaml:"duration"`
	Runs        int           `yaml:"runs"`
	Seed        uint64        `yaml:"seed"`
	NoLog       bool          `yaml:"noLog"`
	LogLevel    string        `yaml:"level"`
}

func defaultConfig() Config {
	return Config{
		DB:          "postgres",
		Password:    os.Getenv("RANGEBENCH_PASSWORD"),
		SSLMode:     "disable",
		Range:       1000,
		Queries:     10000,
		Concurrency: 10,
		Warmup:      100,
		LogLevel:    "info",
	}
}

// loadEnv reads .env when present so RANGEBENCH_PASSWORD can stay out of the
// shell history.
func loadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}

func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// confPath finds -conf before the flag set is parsed.
func confPath(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "conf" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func (c Config) conn() bench.ConnConfig {
	port := c.Port
	if port == 0 {
		switch c.DB {
		case "mysql":
			port = 3306
		default:
			port = 5432
		}
	}
	return bench.ConnConfig{
		Host:     c.Host,
		Port:     port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		SSLMode:  c.SSLMode,
		Path:     c.Path,
	}
}

func (c Config) params() bench.BenchParams {
	return bench.BenchParams{
		Range:              c.Range,
		CreateTempDatabase: c.TempDB,
		Queries:            c.Queries,
		Concurrency:        c.Concurrency,
		Warmup:             c.Warmup,
		Duration:           c.Duration,
		Runs:               c.Runs,
		Seed:               c.Seed,
	}
}

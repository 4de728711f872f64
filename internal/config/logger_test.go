package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simp-lee/logger"
)

func boolPtr(b bool) *bool { return &b }

func TestSetupLogger_LevelMapping(t *testing.T) {
	tests := []struct {
		level     string
		wantLevel slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{" Warn ", slog.LevelWarn},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			log, err := SetupLogger(&LogConfig{Level: tt.level, Format: "text", Color: boolPtr(false)})
			if err != nil {
				t.Fatalf("SetupLogger error: %v", err)
			}
			defer log.Close()

			if !log.Enabled(context.TODO(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > slog.LevelDebug && log.Enabled(context.TODO(), tt.wantLevel-1) {
				t.Errorf("expected level %v to be disabled (configured: %v)", tt.wantLevel-1, tt.wantLevel)
			}
		})
	}
}

func TestSetupLogger_NilConfig(t *testing.T) {
	if _, err := SetupLogger(nil); err == nil {
		t.Fatal("SetupLogger(nil) expected error")
	}
}

func TestSetupLogger_SetsDefault(t *testing.T) {
	log, err := SetupLogger(&LogConfig{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}
	defer log.Close()

	if slog.Default().Handler() != log.Handler() {
		t.Error("SetupLogger did not set slog.Default()")
	}
}

func TestSetupLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.log")

	log, err := SetupLogger(&LogConfig{Level: "info", Format: "json", FilePath: path, Color: boolPtr(false)})
	if err != nil {
		t.Fatalf("SetupLogger error: %v", err)
	}
	log.Info("category created", slog.String("category_id", "c-1"))
	if err := log.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "category created") || !strings.Contains(string(data), "c-1") {
		t.Errorf("log file missing record: %s", data)
	}
}

func TestBuildLoggerOpts(t *testing.T) {
	// Level, Middleware, ConsoleFormat and ConsoleColor are always present.
	const baseCount = 4
	const fileBaseCount = baseCount + 2

	tests := []struct {
		name      string
		cfg       *LogConfig
		wantCount int
	}{
		{"console only", &LogConfig{Level: "info", Format: "text"}, baseCount},
		{"unknown format", &LogConfig{Level: "info", Format: "whatever"}, baseCount},
		{"color disabled", &LogConfig{Level: "info", Format: "text", Color: boolPtr(false)}, baseCount},
		{"file", &LogConfig{Level: "info", Format: "json", FilePath: "/tmp/catalog.log"}, fileBaseCount},
		{
			name: "file with max size",
			cfg: &LogConfig{
				Level: "info", Format: "text", FilePath: "/tmp/catalog.log",
				MaxSizeMB: 10,
			},
			wantCount: fileBaseCount + 1,
		},
		{
			name: "file with compress false",
			cfg: &LogConfig{
				Level: "info", Format: "text", FilePath: "/tmp/catalog.log",
				CompressRotated: boolPtr(false),
			},
			wantCount: fileBaseCount + 1,
		},
		{
			name: "file with all rotation fields",
			cfg: &LogConfig{
				Level: "info", Format: "json", FilePath: "/tmp/catalog.log",
				MaxSizeMB: 50, RetentionDays: 30, MaxBackups: 5,
				CompressRotated: boolPtr(true),
			},
			wantCount: fileBaseCount + 4,
		},
		{
			name: "rotation ignored without file",
			cfg: &LogConfig{
				Level: "info", Format: "text",
				MaxSizeMB: 50, RetentionDays: 30, MaxBackups: 5,
			},
			wantCount: baseCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := BuildLoggerOpts(tt.cfg)
			if len(opts) != tt.wantCount {
				t.Errorf("option count = %d, want %d", len(opts), tt.wantCount)
			}
		})
	}

	if opts := BuildLoggerOpts(nil); opts != nil {
		t.Errorf("BuildLoggerOpts(nil) = %d options, want nil", len(opts))
	}
}

func TestBuildLoggerOpts_ProducesValidLogger(t *testing.T) {
	cfg := &LogConfig{
		Level: "debug", Format: "text", Color: boolPtr(false),
		FilePath:  filepath.Join(t.TempDir(), "opts.log"),
		MaxSizeMB: 10, RetentionDays: 7, MaxBackups: 3,
	}

	log, err := logger.New(BuildLoggerOpts(cfg)...)
	if err != nil {
		t.Fatalf("logger.New failed: %v", err)
	}
	defer log.Close()

	if !log.Enabled(context.TODO(), slog.LevelDebug) {
		t.Error("expected debug to be enabled")
	}
}

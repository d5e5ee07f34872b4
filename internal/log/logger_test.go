package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"tradeblock/internal/config"
)

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Errorf("expected debug level to be enabled")
	}
	_ = logger.Sync()
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(config.LoggingConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	logger, err := NewLogger(config.LoggingConfig{
		Level:       "info",
		Encoding:    "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}

	logger.Info("请求完成", zap.Int("status", 200))
	logger.Debug("不应输出")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), raw)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "tradeblock" || entry["level"] != "info" {
		t.Errorf("unexpected fields: %v", entry)
	}
	if _, ok := entry["ts"].(string); !ok {
		t.Errorf("expected ISO8601 ts field, got %v", entry["ts"])
	}
}

package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"itti/internal/logging"
)

func TestNewConsoleWritesToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("folder provisioned",
		logging.String(logging.FieldIdentity, "JUAN PEREZ"),
		logging.Int("events", 3),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "folder provisioned") {
		t.Fatalf("expected message in output, got %q", text)
	}
	if !strings.Contains(text, `identity="JUAN PEREZ"`) {
		t.Fatalf("expected quoted identity attr, got %q", text)
	}
	if !strings.Contains(text, "events=3") {
		t.Fatalf("expected events attr, got %q", text)
	}
}

func TestConsoleHoistsComponent(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "component.log")

	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "orchestrator").Info("pass complete")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "orchestrator: pass complete") {
		t.Fatalf("expected component prefix, got %q", content)
	}
}

func TestConsoleRespectsLevel(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "level.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("kept")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "suppressed") {
		t.Fatalf("info line should be suppressed at warn level: %q", text)
	}
	if !strings.Contains(text, "WARN kept") {
		t.Fatalf("expected warn line, got %q", text)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("json message", logging.String("k", "v"))
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

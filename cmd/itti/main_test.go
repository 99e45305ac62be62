package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	storage := filepath.Join(base, "storage")
	for _, dir := range []string{
		filepath.Join(storage, "clientes"),
		filepath.Join(storage, "inbox"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	content := fmt.Sprintf(`[drive]
backend = "local"
local_root = %q
root_folder_id = "clientes"
watch_folder_id = "inbox"

[paths]
download_dir = %q
state_dir = %q
log_dir = %q
`,
		storage,
		filepath.Join(base, "downloads"),
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
	)

	path := filepath.Join(base, "itti.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config written: %v", err)
	}

	// A second init without --overwrite refuses to clobber.
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config")
	}
}

func TestLedgerCountOnFreshState(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "ledger", "count")
	if err != nil {
		t.Fatalf("ledger count failed: %v", err)
	}
	if !strings.Contains(out, "0 known customer(s)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLedgerClearRequiresForce(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCLI(t, "--config", cfgPath, "ledger", "clear"); err == nil {
		t.Fatal("expected clear to require --force")
	}
	if _, err := runCLI(t, "--config", cfgPath, "ledger", "clear", "--force"); err != nil {
		t.Fatalf("forced clear failed: %v", err)
	}
}

func TestRunCommandOnEmptyDirs(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "run")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "Ingestion: 0 changed spreadsheet(s)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

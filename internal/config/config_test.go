package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"itti/internal/config"
	"itti/internal/drive"
)

func TestLoadDefaultsUsesEnvRootFolderAndExpandsPaths(t *testing.T) {
	t.Setenv("ITTI_DRIVE_ROOT_FOLDER_ID", "root-123")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDownloads := filepath.Join(tempHome, ".local", "share", "itti", "downloads")
	if cfg.Paths.DownloadDir != wantDownloads {
		t.Fatalf("unexpected download dir: got %q want %q", cfg.Paths.DownloadDir, wantDownloads)
	}
	if cfg.Drive.RootFolderID != "root-123" {
		t.Fatalf("expected root folder from env, got %q", cfg.Drive.RootFolderID)
	}
	if cfg.Drive.WatchFolderID != "root-123" {
		t.Fatalf("expected watch folder to default to root, got %q", cfg.Drive.WatchFolderID)
	}
	if cfg.Ingest.IdentityColumn != "Nombre" {
		t.Fatalf("unexpected identity column: %q", cfg.Ingest.IdentityColumn)
	}
	if len(cfg.Ingest.MimeAllowList) == 0 {
		t.Fatal("expected default mime allow list")
	}
	found := false
	for _, mime := range cfg.Ingest.MimeAllowList {
		if mime == drive.MimeGoogleSheet {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected native spreadsheet mime in allow list, got %v", cfg.Ingest.MimeAllowList)
	}
	if cfg.Ingest.AdvanceWatermarkOnPollError {
		t.Fatal("expected watermark advance on poll error to default off")
	}
}

func TestLoadParsesFileAndValidates(t *testing.T) {
	t.Setenv("ITTI_DRIVE_ROOT_FOLDER_ID", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "itti.toml")
	content := `
[drive]
backend = "local"
local_root = "` + filepath.Join(dir, "tree") + `"

[ingest]
identity_column = "Cliente"
mime_allow_list = ["TEXT/CSV", "text/csv", ""]

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Ingest.IdentityColumn != "Cliente" {
		t.Fatalf("unexpected identity column: %q", cfg.Ingest.IdentityColumn)
	}
	if len(cfg.Ingest.MimeAllowList) != 1 || cfg.Ingest.MimeAllowList[0] != "text/csv" {
		t.Fatalf("expected deduped lowercase mime list, got %v", cfg.Ingest.MimeAllowList)
	}
	if !cfg.LocalBackend() {
		t.Fatal("expected local backend profile")
	}
	if cfg.Logging.Format != "console" && cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsMissingRootFolder(t *testing.T) {
	t.Setenv("ITTI_DRIVE_ROOT_FOLDER_ID", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when drive.root_folder_id missing")
	}
	if !strings.Contains(err.Error(), "drive.root_folder_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateWorkspaceNeedsDelegatedUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itti.toml")
	content := `
[auth]
mode = "workspace"

[drive]
backend = "local"
local_root = "` + dir + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ITTI_DELEGATED_USER_EMAIL", "")

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "delegated_user_email") {
		t.Fatalf("expected delegated user error, got %v", err)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[ingest]") {
		t.Fatal("expected sample to include ingest section")
	}
}

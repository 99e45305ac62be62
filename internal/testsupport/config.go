package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"itti/internal/config"
	"itti/internal/drive"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to the local storage backend and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Drive.Backend = "local"
	cfgVal.Drive.LocalRoot = filepath.Join(base, "storage")
	cfgVal.Drive.RootFolderID = "clientes"
	cfgVal.Drive.WatchFolderID = "inbox"
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workflow.ErrorRetryInterval = 1
	// Default() leaves the mime allow list for config normalization, which
	// only runs through config.Load; fill it the same way here.
	cfgVal.Ingest.MimeAllowList = drive.SpreadsheetMimeTypes()

	for _, dir := range []string{
		filepath.Join(cfgVal.Drive.LocalRoot, cfgVal.Drive.RootFolderID),
		filepath.Join(cfgVal.Drive.LocalRoot, cfgVal.Drive.WatchFolderID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithIdentityColumn overrides the identity column on the test config.
func WithIdentityColumn(column string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.IdentityColumn = column
	}
}

// WithNtfyTopic sets the ntfy endpoint on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithIntervals overrides the gmail and drive poll intervals, in seconds.
func WithIntervals(gmail, drive int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gmail.CheckInterval = gmail
		b.cfg.Drive.CheckInterval = drive
	}
}

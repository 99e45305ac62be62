package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Auth contains Google credential configuration. The credential file itself
// is consumed by the backend collaborators, never parsed here.
type Auth struct {
	Mode               string `toml:"mode"`
	ServiceAccountFile string `toml:"service_account_file"`
	DelegatedUserEmail string `toml:"delegated_user_email"`
}

// Gmail contains inbox polling configuration.
type Gmail struct {
	FilterSubject string `toml:"filter_subject"`
	FilterFrom    string `toml:"filter_from"`
	FilterLabel   string `toml:"filter_label"`
	CheckInterval int    `toml:"check_interval"`
}

// Drive contains storage backend configuration.
type Drive struct {
	Backend       string `toml:"backend"`
	LocalRoot     string `toml:"local_root"`
	RootFolderID  string `toml:"root_folder_id"`
	WatchFolderID string `toml:"watch_folder_id"`
	CheckInterval int    `toml:"check_interval"`
}

// Ingest contains the dedup and provisioning engine configuration.
type Ingest struct {
	IdentityColumn string `toml:"identity_column"`
	CreateFolders  bool   `toml:"create_folders"`
	FoldCase       bool   `toml:"fold_case"`
	// AdvanceWatermarkOnPollError controls whether the watermark advances
	// when the poll call itself fails outright. Per-item failures never
	// block the advance.
	AdvanceWatermarkOnPollError bool     `toml:"advance_watermark_on_poll_error"`
	MimeAllowList               []string `toml:"mime_allow_list"`
}

// Paths contains local directory configuration.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NewCustomers   bool   `toml:"new_customers"`
	Attachments    bool   `toml:"attachments"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Itti.
//
// Configuration sections by subsystem:
//   - Auth: service account credentials and delegation mode
//   - Gmail: inbox filters and polling interval
//   - Drive: storage backend profile, folder IDs, polling interval
//   - Ingest: identity column, normalization, watermark policy
//   - Paths: local download/state/log directories
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon retry timing
//   - Logging: log format and level
type Config struct {
	Auth          Auth          `toml:"auth"`
	Gmail         Gmail         `toml:"gmail"`
	Drive         Drive         `toml:"drive"`
	Ingest        Ingest        `toml:"ingest"`
	Paths         Paths         `toml:"paths"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/itti/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A `.env` file in the
// working directory is loaded first so credential values can live outside
// the TOML file.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("itti.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LocalBackend reports whether the local filesystem storage profile is active.
func (c *Config) LocalBackend() bool {
	return c.Drive.Backend == "local"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

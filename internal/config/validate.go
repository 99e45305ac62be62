package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	switch c.Auth.Mode {
	case "personal":
	case "workspace":
		if c.Auth.DelegatedUserEmail == "" {
			return errors.New("auth.delegated_user_email must be set when auth.mode is \"workspace\"")
		}
	default:
		return fmt.Errorf("auth.mode must be \"personal\" or \"workspace\", got %q", c.Auth.Mode)
	}
	return nil
}

func (c *Config) validateDrive() error {
	switch c.Drive.Backend {
	case "drive":
		if c.Drive.RootFolderID == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/itti/config.toml"
			}
			return fmt.Errorf("drive.root_folder_id is required. Set ITTI_DRIVE_ROOT_FOLDER_ID env var or edit %s (create with 'itti config init')", defaultPath)
		}
	case "local":
		if strings.TrimSpace(c.Drive.LocalRoot) == "" {
			return errors.New("drive.local_root must be set when drive.backend is \"local\"")
		}
	default:
		return fmt.Errorf("drive.backend must be \"drive\" or \"local\", got %q", c.Drive.Backend)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.IdentityColumn == "" {
		return errors.New("ingest.identity_column must be set")
	}
	if len(c.Ingest.MimeAllowList) == 0 {
		return errors.New("ingest.mime_allow_list must include at least one mime type")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"gmail.check_interval":          c.Gmail.CheckInterval,
		"drive.check_interval":          c.Drive.CheckInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

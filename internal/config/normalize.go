package config

import (
	"fmt"
	"os"
	"strings"

	"itti/internal/drive"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	c.normalizeGmail()
	if err := c.normalizeDrive(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAuth() error {
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	if c.Auth.Mode == "" {
		c.Auth.Mode = defaultAuthMode
	}
	if value, ok := os.LookupEnv("ITTI_SERVICE_ACCOUNT_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Auth.ServiceAccountFile = strings.TrimSpace(value)
	}
	var err error
	if c.Auth.ServiceAccountFile, err = expandPath(c.Auth.ServiceAccountFile); err != nil {
		return fmt.Errorf("auth.service_account_file: %w", err)
	}
	c.Auth.DelegatedUserEmail = strings.TrimSpace(c.Auth.DelegatedUserEmail)
	if c.Auth.DelegatedUserEmail == "" {
		if value, ok := os.LookupEnv("ITTI_DELEGATED_USER_EMAIL"); ok {
			c.Auth.DelegatedUserEmail = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeGmail() {
	c.Gmail.FilterSubject = strings.TrimSpace(c.Gmail.FilterSubject)
	c.Gmail.FilterFrom = strings.TrimSpace(c.Gmail.FilterFrom)
	c.Gmail.FilterLabel = strings.TrimSpace(c.Gmail.FilterLabel)
	if c.Gmail.CheckInterval <= 0 {
		c.Gmail.CheckInterval = defaultGmailCheckInterval
	}
}

func (c *Config) normalizeDrive() error {
	c.Drive.Backend = strings.ToLower(strings.TrimSpace(c.Drive.Backend))
	if c.Drive.Backend == "" {
		c.Drive.Backend = defaultDriveBackend
	}
	if c.Drive.Backend == "local" {
		var err error
		if c.Drive.LocalRoot, err = expandPath(c.Drive.LocalRoot); err != nil {
			return fmt.Errorf("drive.local_root: %w", err)
		}
	}
	c.Drive.RootFolderID = strings.TrimSpace(c.Drive.RootFolderID)
	if c.Drive.RootFolderID == "" {
		if value, ok := os.LookupEnv("ITTI_DRIVE_ROOT_FOLDER_ID"); ok {
			c.Drive.RootFolderID = strings.TrimSpace(value)
		}
	}
	c.Drive.WatchFolderID = strings.TrimSpace(c.Drive.WatchFolderID)
	if c.Drive.WatchFolderID == "" {
		c.Drive.WatchFolderID = c.Drive.RootFolderID
	}
	if c.Drive.CheckInterval <= 0 {
		c.Drive.CheckInterval = defaultDriveCheckInterval
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.IdentityColumn = strings.TrimSpace(c.Ingest.IdentityColumn)
	if c.Ingest.IdentityColumn == "" {
		c.Ingest.IdentityColumn = defaultIdentityColumn
	}
	if len(c.Ingest.MimeAllowList) == 0 {
		c.Ingest.MimeAllowList = drive.SpreadsheetMimeTypes()
		return
	}
	mimes := make([]string, 0, len(c.Ingest.MimeAllowList))
	seen := make(map[string]struct{}, len(c.Ingest.MimeAllowList))
	for _, mime := range c.Ingest.MimeAllowList {
		normalized := strings.ToLower(strings.TrimSpace(mime))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		mimes = append(mimes, normalized)
	}
	if len(mimes) == 0 {
		mimes = drive.SpreadsheetMimeTypes()
	}
	c.Ingest.MimeAllowList = mimes
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("ITTI_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

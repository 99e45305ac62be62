package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"itti/internal/ledger"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and ledger status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lockPath := filepath.Join(cfg.Paths.StateDir, "ittid.lock")
			running, err := daemonRunning(lockPath)
			if err != nil {
				return fmt.Errorf("probe daemon lock: %w", err)
			}
			if running {
				fmt.Fprintln(out, statusLine("Daemon", "running", ansiGreen, colorize))
			} else {
				fmt.Fprintln(out, statusLine("Daemon", "not running", ansiYellow, colorize))
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				fmt.Fprintln(out, statusLine("Ledger", "unavailable: "+err.Error(), ansiRed, colorize))
				return nil
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count identities: %w", err)
			}
			fmt.Fprintln(out, statusLine("Known customers", fmt.Sprintf("%d", count), "", colorize))

			wm, err := store.Watermark(cmd.Context(), cfg.Drive.WatchFolderID)
			if err != nil {
				return fmt.Errorf("read watermark: %w", err)
			}
			if wm == nil {
				fmt.Fprintln(out, statusLine("Last check", "never", ansiYellow, colorize))
			} else {
				fmt.Fprintln(out, statusLine("Last check", wm.Local().Format(time.RFC3339), "", colorize))
			}
			return nil
		},
	}
}

// daemonRunning probes the daemon lock without holding it: if the lock can
// be acquired, no daemon owns it.
func daemonRunning(lockPath string) (bool, error) {
	if _, err := os.Stat(lockPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(lockPath)
	ok, err := probe.TryLock()
	if err != nil {
		return false, err
	}
	if ok {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}

func statusLine(label, value, color string, colorize bool) string {
	line := fmt.Sprintf("  %-18s %s", label+":", value)
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

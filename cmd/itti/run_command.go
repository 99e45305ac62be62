package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"itti/internal/logging"
	"itti/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipMail bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one attachment and ingestion pass, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			p, err := pipeline.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()

			if !skipMail {
				mailReport, err := p.Attachments.Run(runCtx)
				if err != nil {
					return fmt.Errorf("attachment pass: %w", err)
				}
				fmt.Fprintf(out, "Attachments: %d message(s), %d stored, %d failed\n",
					mailReport.Messages, len(mailReport.Stored), len(mailReport.Failed))
			}

			report, err := p.Orchestrator.RunPass(runCtx)
			if err != nil {
				return fmt.Errorf("ingestion pass: %w", err)
			}

			fmt.Fprintf(out, "Ingestion: %d changed spreadsheet(s), %d identit(ies), %d new\n",
				report.Events, report.Identities, len(report.NewIdentities))
			for _, id := range report.NewIdentities {
				fmt.Fprintf(out, "  new: %s -> %s\n", id, report.Resolved[id])
			}
			if len(report.FailedSpreadsheets) > 0 {
				ids := make([]string, 0, len(report.FailedSpreadsheets))
				for id := range report.FailedSpreadsheets {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					fmt.Fprintf(out, "  failed spreadsheet: %s (%v)\n", id, report.FailedSpreadsheets[id])
				}
			}
			if len(report.FailedIdentities) > 0 {
				for _, id := range sortedIdentityKeys(report.FailedIdentities) {
					fmt.Fprintf(out, "  failed identity: %s (%v)\n", id, report.FailedIdentities[id])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMail, "skip-mail", false, "Skip the attachment pass")
	return cmd
}

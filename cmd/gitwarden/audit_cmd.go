package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quailyquaily/gitwarden/config"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/clifmt"
)

func newAuditCmd() *cobra.Command {
	var flagTail int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit entries from the JSONL trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cfg.Audit.JSONLPath == "" {
				return fmt.Errorf("no audit.jsonl_path configured")
			}

			data, err := os.ReadFile(cfg.Audit.JSONLPath)
			if err != nil {
				return fmt.Errorf("read audit trail: %w", err)
			}

			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if flagTail > 0 && len(lines) > flagTail {
				lines = lines[len(lines)-flagTail:]
			}

			for _, line := range lines {
				if strings.TrimSpace(line) == "" {
					continue
				}
				var e guard.Entry
				if err := json.Unmarshal([]byte(line), &e); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), clifmt.Dim(line))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatEntry(e))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&flagTail, "tail", "n", 20, "number of entries to show")
	return cmd
}

func formatEntry(e guard.Entry) string {
	decision := string(e.Decision)
	switch e.Decision {
	case guard.OutcomeAllowed:
		decision = clifmt.Success(decision)
	case guard.OutcomeDenied:
		decision = clifmt.Error(decision)
	case guard.OutcomeNeedsApproval:
		decision = clifmt.Warn(decision)
	}

	line := fmt.Sprintf("%s  %-22s %-28s %s/%s (%dms)",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.Action, e.Repo, decision, e.Outcome, e.DurationMs)
	if e.Error != "" {
		line += "\n  " + clifmt.Dim(e.Error)
	}
	return line
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quailyquaily/gitwarden/internal/clifmt"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered GitHub tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			s, err := buildStack(log)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			for _, t := range s.registry.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n", clifmt.Headerf("%s", t.Name()), clifmt.Dim(t.Description()))
			}
			return nil
		},
	}
}

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/internal/clifmt"
	"github.com/quailyquaily/gitwarden/internal/jsonutil"
)

func newRunCmd() *cobra.Command {
	var (
		flagParams  string
		flagSession string
		flagActor   string
		flagAllow   []string
	)

	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Execute a tool call within a fresh session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			s, err := buildStack(log)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			sessionID := strings.TrimSpace(flagSession)
			if sessionID == "" {
				sessionID = "cli_" + randHex(8)
			}

			for _, slug := range flagAllow {
				owner, repo, ok := splitSlug(slug)
				if !ok {
					return fmt.Errorf("invalid --allow value %q (want owner/repo)", slug)
				}
				s.ledger.ApproveRepo(sessionID, owner, repo)
			}

			tool, err := s.registry.Get(args[0])
			if err != nil {
				return err
			}
			params, err := jsonutil.DecodeParams(flagParams)
			if err != nil {
				return err
			}

			ctx := guard.WithSession(context.Background(), sessionID)
			ctx = guard.WithActor(ctx, strings.TrimSpace(flagActor))

			out, err := tool.Execute(ctx, params)
			if err != nil {
				return err
			}

			// One interactive retry when the call is pending approval.
			if repo, pending := pendingApprovalRepo(out); pending && isInteractive() {
				fmt.Fprintln(os.Stderr, clifmt.Warn(fmt.Sprintf("write to %s needs approval for this session", repo)))
				if promptYes(fmt.Sprintf("approve all writes to %s? [y/N] ", repo)) {
					owner, name, ok := splitSlug(repo)
					if ok {
						s.ledger.ApproveRepo(sessionID, owner, name)
						out, err = tool.Execute(ctx, params)
						if err != nil {
							return err
						}
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagParams, "params", "", "tool parameters as a JSON object")
	cmd.Flags().StringVar(&flagSession, "session", "", "session id (default: random)")
	cmd.Flags().StringVar(&flagActor, "actor", "cli", "actor recorded in the audit trail")
	cmd.Flags().StringSliceVar(&flagAllow, "allow", nil, "pre-approve writes to owner/repo for this session (repeatable)")

	return cmd
}

// pendingApprovalRepo inspects a tool result for the approval-required code.
func pendingApprovalRepo(out string) (string, bool) {
	var res struct {
		Code string `json:"code"`
		Repo string `json:"repo"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return "", false
	}
	if res.Code != guard.CodeApprovalRequired || res.Repo == "" {
		return "", false
	}
	return res.Repo, true
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func promptYes(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func splitSlug(slug string) (owner, repo string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(slug), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func randHex(nbytes int) string {
	b := make([]byte, nbytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

package main

import (
	"log/slog"

	"github.com/quailyquaily/gitwarden/config"
	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/tools"
	"github.com/quailyquaily/gitwarden/tools/builtin"
)

// stack wires the validated config into the runtime collaborators. One
// stack lives for one CLI invocation, which is one session.
type stack struct {
	cfg      *config.Config
	creds    *githubapi.Credentials
	api      *githubapi.Client
	ledger   *guard.Ledger
	audit    *guard.Logger
	guard    *guard.Guard
	registry *tools.Registry
}

func buildStack(log *slog.Logger) (*stack, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	var sinks []guard.Sink
	if cfg.Audit.Enabled {
		if cfg.Audit.JSONLPath != "" {
			s, err := guard.NewJSONLSink(cfg.Audit.JSONLPath, cfg.Audit.RotateMaxBytes)
			if err != nil {
				log.Warn("audit_jsonl_sink_error", "error", err.Error())
			} else {
				sinks = append(sinks, s)
			}
		}
		if cfg.Audit.SQLiteDSN != "" {
			s, err := guard.NewSQLiteSink(cfg.Audit.SQLiteDSN)
			if err != nil {
				log.Warn("audit_sqlite_sink_error", "error", err.Error())
			} else {
				sinks = append(sinks, s)
			}
		}
	}

	creds := githubapi.NewCredentials(cfg.Auth)
	api := githubapi.NewClient(creds, log)
	ledger := guard.NewLedger()
	audit := guard.NewLogger(log, sinks...)
	engine := guard.NewEngine(cfg.Policy, ledger)
	g := guard.New(engine, audit, log)

	deps := &builtin.Deps{API: api, Guard: g, Ledger: ledger, Creds: creds}

	r := tools.NewRegistry()
	r.Register(&builtin.StatusTool{Deps: deps})
	r.Register(&builtin.SearchTool{Deps: deps})
	r.Register(&builtin.IssueListTool{Deps: deps})
	r.Register(&builtin.IssueCreateTool{Deps: deps})
	r.Register(&builtin.IssueCommentTool{Deps: deps})
	r.Register(&builtin.PullListTool{Deps: deps})
	r.Register(&builtin.PullCreateTool{Deps: deps})
	r.Register(&builtin.FileGetTool{Deps: deps})
	r.Register(&builtin.FilePutTool{Deps: deps})
	r.Register(&builtin.RepoCreateTool{Deps: deps})
	r.Register(&builtin.SessionAllowTool{Deps: deps})

	return &stack{
		cfg:      cfg,
		creds:    creds,
		api:      api,
		ledger:   ledger,
		audit:    audit,
		guard:    g,
		registry: r,
	}, nil
}

func (s *stack) Close() error {
	return s.audit.Close()
}

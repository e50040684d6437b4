// Package config loads and validates gitwarden configuration. The core
// packages only ever see the validated structs produced here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/quailyquaily/gitwarden/githubapi"
	"github.com/quailyquaily/gitwarden/guard"
	"github.com/quailyquaily/gitwarden/secrets"
)

// AuditConfig selects the durable audit sinks. The in-memory log is always
// active; these are optional persistence layers.
type AuditConfig struct {
	Enabled        bool
	JSONLPath      string
	SQLiteDSN      string
	RotateMaxBytes int64
}

type Config struct {
	Policy guard.PolicyConfig
	Auth   githubapi.Config
	Audit  AuditConfig
}

// Load reads configuration from the given file, or discovers
// gitwarden.yaml in the working directory and ~/.config/gitwarden when the
// path is empty. Environment variables prefixed GITWARDEN_ override file
// values; GITHUB_TOKEN is honored as the token fallback.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GITWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gitwarden")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gitwarden"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			// No file is fine; defaults and env carry the config.
		}
	}

	cfg := &Config{
		Policy: guard.PolicyConfig{
			Allowlist: cleanPatterns(v.GetStringSlice("policy.allowlist")),
			Denylist:  cleanPatterns(v.GetStringSlice("policy.denylist")),
			Mode:      guard.Mode(strings.TrimSpace(v.GetString("policy.mode"))),
		},
		Auth: githubapi.Config{
			BaseURL:        strings.TrimSpace(v.GetString("auth.base_url")),
			AppID:          strings.TrimSpace(v.GetString("auth.app_id")),
			InstallationID: strings.TrimSpace(v.GetString("auth.installation_id")),
		},
		Audit: AuditConfig{
			Enabled:        v.GetBool("audit.enabled"),
			JSONLPath:      expandHome(v.GetString("audit.jsonl_path")),
			SQLiteDSN:      strings.TrimSpace(v.GetString("audit.sqlite_dsn")),
			RotateMaxBytes: v.GetInt64("audit.rotate_max_bytes"),
		},
	}

	token := strings.TrimSpace(v.GetString("auth.github_token"))
	if token == "" {
		token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}
	resolved, err := secrets.Resolve(token)
	if err != nil {
		return nil, fmt.Errorf("resolve github token: %w", err)
	}
	cfg.Auth.Token = resolved

	key, err := resolvePrivateKey(v)
	if err != nil {
		return nil, err
	}
	cfg.Auth.PrivateKey = key

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("policy.mode", string(guard.ModeFailClosed))
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.jsonl_path", "~/.gitwarden/audit.jsonl")
	v.SetDefault("audit.rotate_max_bytes", int64(100*1024*1024))
}

// resolvePrivateKey prefers an inline key (or ref) and falls back to
// hydrating from private_key_path.
func resolvePrivateKey(v *viper.Viper) (string, error) {
	if ref := strings.TrimSpace(v.GetString("auth.private_key")); ref != "" {
		key, err := secrets.Resolve(ref)
		if err != nil {
			return "", fmt.Errorf("resolve private key: %w", err)
		}
		return key, nil
	}
	if path := expandHome(v.GetString("auth.private_key_path")); path != "" {
		key, err := secrets.Resolve("file:" + path)
		if err != nil {
			return "", fmt.Errorf("resolve private key: %w", err)
		}
		return key, nil
	}
	return "", nil
}

func (c *Config) validate() error {
	switch c.Policy.Mode {
	case guard.ModeFailClosed, guard.ModeMonitor:
	default:
		return fmt.Errorf("invalid policy.mode: %q (want fail_closed or monitor)", c.Policy.Mode)
	}

	// A partially configured app triple is a misconfiguration worth failing
	// fast on; a fully absent one just means app-mode calls will error.
	appFields := 0
	for _, f := range []string{c.Auth.AppID, c.Auth.InstallationID, c.Auth.PrivateKey} {
		if f != "" {
			appFields++
		}
	}
	if appFields != 0 && appFields != 3 {
		return fmt.Errorf("incomplete github app config: app_id, installation_id, and private_key must all be set")
	}

	if c.Audit.RotateMaxBytes < 0 {
		return fmt.Errorf("audit.rotate_max_bytes must not be negative")
	}
	return nil
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && strings.TrimSpace(home) != "" {
			if p == "~" {
				return filepath.Clean(home)
			}
			return filepath.Clean(filepath.Join(home, strings.TrimPrefix(p, "~/")))
		}
	}
	return filepath.Clean(p)
}

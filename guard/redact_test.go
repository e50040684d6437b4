package guard

import (
	"strings"
	"testing"
)

func TestRedactTokens(t *testing.T) {
	classic := "ghp_" + strings.Repeat("A", 36)
	installation := "ghs_" + strings.Repeat("b", 40)
	fine := "github_pat_" + strings.Repeat("x", 30)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain_text", "401 bad credentials", "401 bad credentials"},
		{"classic_token", "auth failed for " + classic, "auth failed for [REDACTED]"},
		{"installation_token", "token " + installation + " expired", "token [REDACTED] expired"},
		{"fine_grained", "got " + fine, "got [REDACTED]"},
		{"multiple", classic + " and " + fine, "[REDACTED] and [REDACTED]"},
		{"too_short_not_redacted", "ghp_short", "ghp_short"},
		{"unknown_prefix_not_redacted", "ghx_" + strings.Repeat("A", 36), "ghx_" + strings.Repeat("A", 36)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactTokens(tc.in)
			if got != tc.want {
				t.Fatalf("RedactTokens(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

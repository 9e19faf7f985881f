package screen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldops/salesreport/pkg/screen"
)

func TestScreenCleanRequests(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		query string
	}{
		{"plain page", "/reports", ""},
		{"api path with id", "/api/reports/01HZXK3V9T4N5R6P7Q8S9T0V1W", ""},
		{"search query", "/api/customers", "q=acme+industries&page=2"},
		{"ampersand in text", "/api/reports", "summary=meeting+with+R%26D+team"},
		{"angle brackets alone", "/api/reports", "note=score+%3C+10+%3E+5"},
		{"unchained pipe in value", "/api/reports", "tags=urgent%7Cfollow+up"},
		{"date range", "/api/reports", "from=2026-08-01&to=2026-08-29"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := screen.Screen(tc.path, tc.query)
			require.True(t, res.OK, "reason: %s", res.Reason)
			require.Empty(t, res.Reason)
		})
	}
}

func TestScreenBlocksAttacks(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		query  string
		reason string
	}{
		{"plain traversal", "/static/../../etc/passwd", "", screen.ReasonPathTraversal},
		{"encoded traversal", "/static/%2e%2e%2fetc/passwd", "", screen.ReasonPathTraversal},
		{"double encoded traversal", "/static/%252e%252e%252fsecrets", "", screen.ReasonPathTraversal},
		{"backslash traversal", "/static/..\\windows", "", screen.ReasonPathTraversal},
		{"null byte in path", "/reports%00.png", "", screen.ReasonNullByte},
		{"null byte in query", "/reports", "file=a%00b", screen.ReasonNullByte},
		{"union select", "/api/reports", "id=1+union+select+password+from+users", screen.ReasonSQLInjection},
		{"quote token", "/api/reports", "name=o%27brien", screen.ReasonSQLInjection},
		{"comment token", "/api/reports", "id=1--", screen.ReasonSQLInjection},
		{"drop table", "/api/reports", "q=1%3B+drop+table+reports", screen.ReasonSQLInjection},
		{"stored proc prefix", "/api/reports", "cmd=xp_cmdshell", screen.ReasonSQLInjection},
		{"script tag", "/api/reports", "q=%3Cscript%3Ealert(1)%3C/script%3E", screen.ReasonXSS},
		{"javascript scheme", "/api/reports", "url=javascript:alert(1)", screen.ReasonXSS},
		{"event handler", "/api/reports", "q=%3Cimg+src=x+onerror=alert(1)%3E", screen.ReasonXSS},
		{"chained command", "/api/reports", "host=example.com%7Ccat+/etc/passwd", screen.ReasonCommandInjection},
		{"command substitution", "/api/reports", "q=%24(id)", screen.ReasonCommandInjection},
		{"backtick", "/api/reports", "q=%60id%60", screen.ReasonCommandInjection},
		{"rm dash rf", "/api/reports", "q=rm+-rf+/tmp", screen.ReasonCommandInjection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := screen.Screen(tc.path, tc.query)
			require.False(t, res.OK)
			require.Equal(t, tc.reason, res.Reason)
		})
	}
}

// The path check must win even when the query would also match, so logs name
// the earliest signature.
func TestScreenOrder(t *testing.T) {
	res := screen.Screen("/../../etc", "q=%3Cscript%3E")
	require.False(t, res.OK)
	require.Equal(t, screen.ReasonPathTraversal, res.Reason)
}

func TestScreenMalformedEscapeStillChecked(t *testing.T) {
	// "%zz" makes QueryUnescape fail; the raw string is screened instead.
	res := screen.Screen("/api/reports", "q=%zz<script>alert(1)</script>")
	require.False(t, res.OK)
	require.Equal(t, screen.ReasonXSS, res.Reason)
}

func TestHasPathTraversalCaseInsensitive(t *testing.T) {
	require.True(t, screen.HasPathTraversal("/a/%2E%2E%2Fb"))
	require.False(t, screen.HasPathTraversal("/a/b.c/d"))
}

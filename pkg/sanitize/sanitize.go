// Package sanitize provides pure helpers for detecting injection patterns in
// free text and for neutralizing special characters before storage or
// display. The persistence layer still uses parameterized queries; this is
// defense in depth at the input boundary, not the primary control.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(union|select|insert|delete|drop|update|create|alter)\b.{0,40}\b(select|from|into|table|set|database)\b`),
		regexp.MustCompile(`(?i)(--|/\*|\*/|xp_|sp_)`),
		regexp.MustCompile(`(?i)\b(exec|execute|cast|declare|nvarchar)\b`),
		regexp.MustCompile(`'\s*(or|and)\s+.{0,20}=`),
	}
	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*(script|iframe|embed|object)`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)\bon\w+\s*=`),
		regexp.MustCompile(`(?i)<\s*img[^>]+src\s*=\s*["']?\s*data:`),
	}
	traversalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.\./|\.\.\\`),
		regexp.MustCompile(`(?i)%2e%2e(%2f|%5c|/|\\)`),
		regexp.MustCompile(`(?i)%252e%252e`),
	}
	cmdPatterns = []*regexp.Regexp{
		regexp.MustCompile("`|\\$\\("),
		regexp.MustCompile(`(?i)(\||&&|;)\s*(rm|chmod|chown|wget|curl|sh|bash|nc|cat)\b`),
		regexp.MustCompile(`(?i)\brm\s+-rf\b`),
	}
)

// DetectSQLInjection reports whether s contains a SQL-injection signature.
func DetectSQLInjection(s string) bool { return matchAny(sqlPatterns, s) }

// DetectXSS reports whether s contains a cross-site-scripting signature.
func DetectXSS(s string) bool { return matchAny(xssPatterns, s) }

// DetectPathTraversal reports whether s contains a directory traversal
// sequence, including URL-encoded forms.
func DetectPathTraversal(s string) bool { return matchAny(traversalPatterns, s) }

// DetectCommandInjection reports whether s contains a shell-injection
// signature.
func DetectCommandInjection(s string) bool { return matchAny(cmdPatterns, s) }

// Detect runs every detector and returns the matched category names.
// An empty slice means the text is clean.
func Detect(s string) []string {
	var matched []string
	if DetectSQLInjection(s) {
		matched = append(matched, "sql_injection")
	}
	if DetectXSS(s) {
		matched = append(matched, "xss")
	}
	if DetectPathTraversal(s) {
		matched = append(matched, "path_traversal")
	}
	if DetectCommandInjection(s) {
		matched = append(matched, "command_injection")
	}
	return matched
}

var htmlEncoder = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#47;",
)

// EncodeHTML encodes characters that are significant in an HTML context so
// stored text renders inert.
func EncodeHTML(s string) string {
	return htmlEncoder.Replace(s)
}

// Clean strips NUL bytes, trims surrounding whitespace and HTML-encodes the
// result. This is the normalization applied to free-text fields at the write
// boundary.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	return EncodeHTML(s)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Package screen inspects inbound request paths and query strings for known
// attack signatures before any other processing happens. It is a heuristic
// blacklist: a pass here is not a substitute for parameterized queries or
// output encoding at the data layer.
package screen

import (
	"net/url"
	"regexp"
	"strings"
)

// Result is the outcome of screening a single request.
type Result struct {
	OK bool
	// Reason names the matched signature category. It is for server-side
	// logging only and must never be echoed back to the client.
	Reason string
}

// Reason categories reported on a failed screen.
const (
	ReasonPathTraversal    = "path_traversal"
	ReasonNullByte         = "null_byte"
	ReasonSQLInjection     = "sql_injection"
	ReasonXSS              = "xss"
	ReasonCommandInjection = "command_injection"
)

var ok = Result{OK: true}

// Screen runs all checks in order, short-circuiting on the first match.
// Order matters: path checks are cheapest and catch the most common scanner
// noise, so they run before the query-string signature sets.
func Screen(path, rawQuery string) Result {
	if HasPathTraversal(path) {
		return Result{Reason: ReasonPathTraversal}
	}
	if HasNullByte(path) || HasNullByte(rawQuery) {
		return Result{Reason: ReasonNullByte}
	}

	query := decodeLower(rawQuery)
	if query == "" {
		return ok
	}
	if HasSQLInjection(query) {
		return Result{Reason: ReasonSQLInjection}
	}
	if HasXSS(query) {
		return Result{Reason: ReasonXSS}
	}
	if HasCommandInjection(query) {
		return Result{Reason: ReasonCommandInjection}
	}
	return ok
}

// traversalSequences covers plain, single URL-encoded and double URL-encoded
// forms of "../" and "..\".
var traversalSequences = []string{
	"../", "..\\",
	"%2e%2e%2f", "%2e%2e/", "..%2f",
	"%2e%2e%5c", "..%5c",
	"%252e%252e%252f", "%252e%252e%255c",
}

// HasPathTraversal reports whether the path contains a directory traversal
// sequence in any of its encoded forms.
func HasPathTraversal(path string) bool {
	p := strings.ToLower(path)
	for _, seq := range traversalSequences {
		if strings.Contains(p, seq) {
			return true
		}
	}
	return false
}

// HasNullByte reports a literal or percent-encoded NUL anywhere in s.
func HasNullByte(s string) bool {
	return strings.ContainsRune(s, 0) || strings.Contains(strings.ToLower(s), "%00")
}

var (
	sqlKeywordPairs = []*regexp.Regexp{
		regexp.MustCompile(`union[\s(]+.*select`),
		regexp.MustCompile(`select[\s(]+.*from`),
		regexp.MustCompile(`insert[\s(]+.*into`),
		regexp.MustCompile(`delete[\s(]+.*from`),
		regexp.MustCompile(`drop[\s(]+.*table`),
		regexp.MustCompile(`update[\s(]+.*set`),
	}
	sqlTokens = []string{
		"'", `"`, ";", "--", "/*", "*/", "xp_", "sp_", "0x",
	}
	sqlKeywords = regexp.MustCompile(`\b(exec|execute|cast|declare|nvarchar|varchar)\b`)
)

// HasSQLInjection reports SQL-injection signatures in an already-decoded,
// lowercased query string.
func HasSQLInjection(query string) bool {
	for _, re := range sqlKeywordPairs {
		if re.MatchString(query) {
			return true
		}
	}
	for _, tok := range sqlTokens {
		if strings.Contains(query, tok) {
			return true
		}
	}
	return sqlKeywords.MatchString(query)
}

var (
	xssTags          = []string{"<script", "<iframe", "<embed", "<object", "javascript:"}
	xssEventHandlers = regexp.MustCompile(`\bon\w+\s*=`)
)

// HasXSS reports cross-site-scripting signatures in an already-decoded,
// lowercased query string. Bare "<" and ">" are fine; only executable
// constructs match.
func HasXSS(query string) bool {
	for _, tag := range xssTags {
		if strings.Contains(query, tag) {
			return true
		}
	}
	return xssEventHandlers.MatchString(query)
}

var (
	// A shell metacharacter alone is not enough: "&" separates query
	// parameters, legitimate text contains ";", and "|" appears in
	// delimited values and alternation syntax. Match metacharacters only
	// when chained into a command, plus substitution constructs and named
	// utilities outright.
	cmdChained    = regexp.MustCompile(`(\||&&|;)\s*(rm|chmod|chown|wget|curl|sh|bash|zsh|nc|cat|ls|ping)\b`)
	cmdUtilities  = []string{"rm -rf", "/bin/sh", "/bin/bash", "chmod ", "wget ", "curl "}
	cmdSubstrings = []string{"`", "$("}
)

// HasCommandInjection reports shell-injection signatures in an
// already-decoded, lowercased query string.
func HasCommandInjection(query string) bool {
	for _, s := range cmdSubstrings {
		if strings.Contains(query, s) {
			return true
		}
	}
	for _, u := range cmdUtilities {
		if strings.Contains(query, u) {
			return true
		}
	}
	return cmdChained.MatchString(query)
}

// decodeLower percent-decodes the query so encoded signatures can't slip
// through, falling back to the raw form when decoding fails. Fail closed:
// a malformed escape still gets screened, just undecoded.
func decodeLower(rawQuery string) string {
	decoded, err := url.QueryUnescape(rawQuery)
	if err != nil {
		decoded = rawQuery
	}
	return strings.ToLower(decoded)
}

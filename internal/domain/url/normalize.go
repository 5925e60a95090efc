// Package url normalizes user-typed site addresses.
package url

import "strings"

// opaqueSchemes are schemes written without "//".
var opaqueSchemes = []string{"about:", "data:", "file:", "javascript:", "blob:"}

// Normalize adds an https:// prefix to inputs that name a host without a
// scheme, such as "example.com", "localhost:8080" or "[::1]". Anything else
// is returned trimmed but otherwise unchanged.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || HasScheme(input) {
		return input
	}
	if LooksLikeHost(input) {
		return "https://" + input
	}
	return input
}

// HasScheme reports whether input starts with a scheme.
func HasScheme(input string) bool {
	if strings.Contains(input, "://") {
		return true
	}
	lower := strings.ToLower(input)
	for _, s := range opaqueSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// LooksLikeHost reports whether a scheme-less input starts with a host name.
func LooksLikeHost(input string) bool {
	if input == "" || strings.ContainsAny(input, " \t") {
		return false
	}
	host := input
	if i := strings.IndexAny(host, "/?#^"); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(host, "[") {
		return strings.Contains(host, "]")
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host == "localhost" || (strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, "."))
}

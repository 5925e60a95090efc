package logging

// TruncateURL shortens a URL for log output, keeping the first maxLen bytes.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 3 || len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}

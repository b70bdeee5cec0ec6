package governance

import "regexp"

// Patterns resembling vendor secret-key prefixes. Anything matching is
// replaced before it can reach a log sink.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`ghp_[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`AIza[0-9A-Za-z\-_]{10,}`),
}

// RedactSecrets replaces API-key-shaped substrings with a fixed marker.
func RedactSecrets(text string) string {
	redacted := text
	for _, re := range secretPatterns {
		redacted = re.ReplaceAllString(redacted, "[REDACTED]")
	}
	return redacted
}

package tools

import "regexp"

// Tool output flows verbatim into the session transcript and from there
// into every later prompt, so leaked credentials would be re-sent to
// the provider on each iteration. Scrub them before the registry hands
// the result back.
var credentialRe = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9-]{20,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|bearer|authorization)\s*[:=]\s*["']?\S{8,}["']?`),
}

const redactedPlaceholder = "[REDACTED]"

// ScrubCredentials replaces anything matching a known credential shape
// with a placeholder.
func ScrubCredentials(text string) string {
	for _, re := range credentialRe {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

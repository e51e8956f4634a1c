package analysis

import "strings"

// Verdict is the aggregated output of one request.
type Verdict struct {
	Summary string                    `json:"result"`
	Signals map[string]UpstreamResult `json:"signals,omitempty"`
	// Completion is the raw completion text, empty when the request short-circuited.
	Completion string `json:"-"`
}

// Signal key names
const (
	SignalURLReputation  = "google_safe_browsing"
	SignalFileReputation = "virustotal"
	SignalIPReputation   = "abuseipdb"
)

// JoinSummary puts the advisory note in front of the primary text, separated by a blank line.
func JoinSummary(note, text string) string {
	if note == "" {
		return text
	}
	return strings.Join([]string{note, text}, "\n\n")
}

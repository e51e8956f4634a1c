package analysis

import "unicode/utf8"

// Outcome of a single upstream call
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailure     Outcome = "failure"
)

// ReasonNoCredential is the Unavailable reason for adapters without a key.
const ReasonNoCredential = "no credential configured"

// UpstreamResult is what every adapter returns; adapters never return a Go error.
type UpstreamResult struct {
	Outcome    Outcome `json:"outcome"`
	Payload    any     `json:"payload,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Error      string  `json:"error,omitempty"`
	StatusCode int     `json:"status_code,omitempty"`
}

// Flagger is implemented by payloads that can carry an authoritative hit,
// e.g. a URL-reputation report with a nonempty match list.
type Flagger interface {
	Flagged() bool
}

func Success(payload any) UpstreamResult {
	return UpstreamResult{Outcome: OutcomeSuccess, Payload: payload}
}

func Unavailable(reason string) UpstreamResult {
	return UpstreamResult{Outcome: OutcomeUnavailable, Reason: reason}
}

// Failure carries a short diagnostic; status is 0 when no HTTP response was received.
func Failure(msg string, status int) UpstreamResult {
	return UpstreamResult{Outcome: OutcomeFailure, Error: msg, StatusCode: status}
}

func (r UpstreamResult) OK() bool { return r.Outcome == OutcomeSuccess }

// Flagged is true only for a successful result whose payload reports a hit.
func (r UpstreamResult) Flagged() bool {
	if !r.OK() {
		return false
	}
	f, ok := r.Payload.(Flagger)
	return ok && f.Flagged()
}

// Truncate cuts s to at most n bytes, used on upstream bodies before they are embedded anywhere.
// The cut never splits a multi-byte rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

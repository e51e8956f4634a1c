package analysis

import (
	"context"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

// HighRiskSummary replaces the completion verdict when URL reputation reports a match.
const HighRiskSummary = "High risk (Google Safe Browsing match)"

// completionService names the primary adapter in UpstreamFailureError.
const completionService = "completion"

// signal is one named upstream result, kept in call order.
type signal struct {
	key    string
	result domain.UpstreamResult
}

// plan is everything the aggregator needs for one request kind.
type plan struct {
	note      string
	signals   []signal
	prompt    string
	maxTokens int
	// shortCircuit allows a flagged signal to replace the completion call.
	shortCircuit bool
}

// aggregate applies the degradation policy: a flagged high-confidence signal
// wins outright, otherwise the completion text is primary and the note is prepended.
func aggregate(ctx context.Context, c domain.Completer, p plan) (domain.Verdict, error) {
	v := domain.Verdict{}
	if len(p.signals) > 0 {
		v.Signals = make(map[string]domain.UpstreamResult, len(p.signals))
		for _, s := range p.signals {
			v.Signals[s.key] = s.result
		}
	}

	if p.shortCircuit {
		for _, s := range p.signals {
			if s.result.Flagged() {
				v.Summary = HighRiskSummary
				return v, nil
			}
		}
	}

	res := c.Complete(ctx, p.prompt, p.maxTokens)
	if !res.OK() {
		msg := res.Error
		if msg == "" {
			msg = res.Reason
		}
		return v, &domain.UpstreamFailureError{Service: completionService, StatusCode: res.StatusCode, Msg: msg}
	}
	text, _ := res.Payload.(string)
	v.Completion = text
	v.Summary = domain.JoinSummary(p.note, text)
	return v, nil
}

package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apphistory "github.com/bryanwahyu/cyber-assistant/internal/application/history"
	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/ai/prompt"
)

// Completion output limits per kind
const (
	questionMaxTokens = 400
	urlMaxTokens      = 220
	smsMaxTokens      = 220
	emailMaxTokens    = 400
	fileMaxTokens     = 400
)

const (
	ipMockNote     = "No ABUSEIPDB_KEY configured — running in mock mode"
	breachMissNote = "No results in local demo dataset. For real checks, integrate HaveIBeenPwned API."
)

// Service implements the analysis use-cases. Safe for concurrent use; the only
// shared state is the history log.
type Service struct {
	Completer domain.Completer
	URLRep    domain.URLReputation
	FileRep   domain.FileReputation
	IPRep     domain.IPReputation
	Feed      domain.ThreatFeed
	Breach    domain.BreachLookup
	// Samples is optional.
	Samples domain.SampleArchive
	History *apphistory.Log
	Logger  *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// record appends the outcome of one request; a failed request stores its error text.
func (s *Service) record(ctx context.Context, kind domain.Kind, in history.Inputs, summary string, err error) {
	if err != nil {
		summary = err.Error()
	}
	s.History.Append(ctx, kind, in, summary)
}

func (s *Service) Ask(ctx context.Context, req domain.Question) (domain.Verdict, error) {
	v, err := aggregate(ctx, s.Completer, plan{
		prompt:    prompt.Question(req.Text),
		maxTokens: questionMaxTokens,
	})
	s.record(ctx, req.Kind(), history.Inputs{Question: req.Text}, v.Summary, err)
	return v, err
}

// CheckURL consults URL reputation first; a match short-circuits the completion call.
func (s *Service) CheckURL(ctx context.Context, req domain.URLCheck) (domain.Verdict, error) {
	rep := s.URLRep.LookupURL(ctx, req.URL)
	v, err := aggregate(ctx, s.Completer, plan{
		signals:      []signal{{key: domain.SignalURLReputation, result: rep}},
		prompt:       prompt.URL(req.URL),
		maxTokens:    urlMaxTokens,
		shortCircuit: true,
	})
	s.record(ctx, req.Kind(), history.Inputs{URL: req.URL}, v.Summary, err)
	return v, err
}

func (s *Service) CheckSMS(ctx context.Context, req domain.SMSCheck) (domain.Verdict, error) {
	note, _ := domain.ScanSMS(req)
	v, err := aggregate(ctx, s.Completer, plan{
		note:      note,
		prompt:    prompt.SMS(req.Message),
		maxTokens: smsMaxTokens,
	})
	s.record(ctx, req.Kind(), history.Inputs{Message: req.Message, Sender: req.Sender}, v.Summary, err)
	return v, err
}

func (s *Service) CheckEmail(ctx context.Context, req domain.EmailCheck) (domain.Verdict, error) {
	note, _ := domain.ScanEmail(req)
	v, err := aggregate(ctx, s.Completer, plan{
		note:      note,
		prompt:    prompt.Email(req.Subject, req.Body),
		maxTokens: emailMaxTokens,
	})
	s.record(ctx, req.Kind(), history.Inputs{Subject: req.Subject, Body: req.Body}, v.Summary, err)
	return v, err
}

// CheckFile archives the sample (best effort), then looks the hash up before asking for a verdict.
func (s *Service) CheckFile(ctx context.Context, req domain.FileCheck) (domain.FileVerdict, error) {
	if req.Hash == "" {
		req.Hash = domain.ContentHash(req.Content)
	}
	if s.Samples != nil {
		if _, err := s.Samples.ArchiveSample(ctx, req.Hash, req.Filename, req.Content); err != nil {
			s.logger().Warn("sample archive failed",
				slog.String("hash", req.Hash),
				slog.String("error", err.Error()),
			)
		}
	}

	rep := s.FileRep.LookupHash(ctx, req.Hash)
	v, err := aggregate(ctx, s.Completer, plan{
		signals:   []signal{{key: domain.SignalFileReputation, result: rep}},
		prompt:    prompt.File(req.Filename, req.Hash),
		maxTokens: fileMaxTokens,
	})
	s.record(ctx, req.Kind(), history.Inputs{Filename: req.Filename, Hash: req.Hash}, v.Summary, err)
	return domain.FileVerdict{Filename: req.Filename, Hash: req.Hash, Verdict: v}, err
}

// CheckIP returns the reputation score directly; no completion is involved.
func (s *Service) CheckIP(ctx context.Context, req domain.IPCheck) domain.IPVerdict {
	res := s.IPRep.LookupIP(ctx, req.IP)
	out := domain.IPVerdict{IP: req.IP}
	var summary string

	switch res.Outcome {
	case domain.OutcomeSuccess:
		report, _ := res.Payload.(domain.IPReport)
		out.Score = report.Score
		out.Raw = report.Raw
		if report.Score != nil {
			summary = fmt.Sprintf("abuseConfidenceScore: %d", *report.Score)
		} else {
			summary = "abuseConfidenceScore: unknown"
		}
	case domain.OutcomeFailure:
		out.Error = res.Error
		out.Status = res.StatusCode
		summary = "error: " + res.Error
	default:
		zero := 0
		out.Score = &zero
		out.Note = ipMockNote
		summary = ipMockNote
	}

	s.History.Append(ctx, req.Kind(), history.Inputs{IP: req.IP}, summary)
	return out
}

// CheckBreach consults the local table only.
func (s *Service) CheckBreach(ctx context.Context, req domain.BreachCheck) domain.BreachVerdict {
	out := domain.BreachVerdict{Email: req.Email}
	breaches := s.Breach.Lookup(req.Email)
	var summary string
	if len(breaches) > 0 {
		out.Found = true
		out.Breaches = breaches
		summary = "Found in: " + strings.Join(breaches, ", ")
	} else {
		out.Note = breachMissNote
		summary = breachMissNote
	}
	s.History.Append(ctx, req.Kind(), history.Inputs{Email: req.Email}, summary)
	return out
}

// ThreatFeed never fails: no credential serves the mock feed and upstream
// problems collapse into a single Low-risk status item.
func (s *Service) ThreatFeed(ctx context.Context) []domain.FeedItem {
	res := s.Feed.Pulses(ctx)
	switch res.Outcome {
	case domain.OutcomeSuccess:
		items, _ := res.Payload.([]domain.FeedItem)
		if len(items) == 0 {
			return []domain.FeedItem{{Title: "OTX returned status 200", Risk: domain.RiskLow}}
		}
		return items
	case domain.OutcomeFailure:
		if res.StatusCode != 0 {
			return []domain.FeedItem{{Title: fmt.Sprintf("OTX returned status %d", res.StatusCode), Risk: domain.RiskLow}}
		}
		return []domain.FeedItem{{Title: "Could not fetch OTX feed", Risk: domain.RiskLow}}
	default:
		return domain.MockFeed()
	}
}

// HistoryRecords lists every recorded request in order.
func (s *Service) HistoryRecords(ctx context.Context) []*history.Record {
	return s.History.List(ctx)
}

// Report exports the history table. Empty history is domain.ErrNotFound.
func (s *Service) Report(ctx context.Context) (apphistory.Report, error) {
	return s.History.Report(ctx)
}

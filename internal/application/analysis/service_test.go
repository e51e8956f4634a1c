package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphistory "github.com/bryanwahyu/cyber-assistant/internal/application/history"
	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/breach"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/history/memory"
)

type fakeCompleter struct {
	result    domain.UpstreamResult
	calls     int
	prompt    string
	maxTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, p string, maxTokens int) domain.UpstreamResult {
	f.calls++
	f.prompt, f.maxTokens = p, maxTokens
	return f.result
}

type flaggedReport struct{ hit bool }

func (r flaggedReport) Flagged() bool { return r.hit }

type fakeURLRep struct{ result domain.UpstreamResult }

func (f fakeURLRep) LookupURL(ctx context.Context, url string) domain.UpstreamResult { return f.result }

type fakeFileRep struct {
	result domain.UpstreamResult
	hash   string
}

func (f *fakeFileRep) LookupHash(ctx context.Context, h string) domain.UpstreamResult {
	f.hash = h
	return f.result
}

type fakeIPRep struct{ result domain.UpstreamResult }

func (f fakeIPRep) LookupIP(ctx context.Context, ip string) domain.UpstreamResult { return f.result }

type fakeFeed struct{ result domain.UpstreamResult }

func (f fakeFeed) Pulses(ctx context.Context) domain.UpstreamResult { return f.result }

type fakeSamples struct {
	key string
	err error
}

func (f *fakeSamples) ArchiveSample(ctx context.Context, hash, filename string, content []byte) (string, error) {
	f.key = hash + "/" + filename
	return "http://minio.test/" + f.key, f.err
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

func newService(c *fakeCompleter) (*Service, *memory.Store) {
	store := memory.New()
	return &Service{
		Completer: c,
		URLRep:    fakeURLRep{result: domain.Unavailable(domain.ReasonNoCredential)},
		FileRep:   &fakeFileRep{result: domain.Unavailable(domain.ReasonNoCredential)},
		IPRep:     fakeIPRep{result: domain.Unavailable(domain.ReasonNoCredential)},
		Feed:      fakeFeed{result: domain.Unavailable(domain.ReasonNoCredential)},
		Breach:    breach.NewDemoTable(),
		History:   apphistory.NewLog(store, fixedClock{}, nil),
	}, store
}

func records(t *testing.T, store *memory.Store) []*history.Record {
	t.Helper()
	recs, err := store.List(context.Background())
	require.NoError(t, err)
	return recs
}

func TestAsk_UsesQuestionPrompt(t *testing.T) {
	c := &fakeCompleter{result: domain.Success("Phishing is a social engineering attack.")}
	svc, store := newService(c)

	v, err := svc.Ask(context.Background(), domain.Question{Text: "what is phishing?"})
	require.NoError(t, err)

	assert.Equal(t, "Phishing is a social engineering attack.", v.Summary)
	assert.Equal(t, 400, c.maxTokens)
	assert.Contains(t, c.prompt, "Answer this question clearly and concisely:\n\nwhat is phishing?")
	recs := records(t, store)
	require.Len(t, recs, 1)
	assert.Equal(t, "QnA", recs[0].Type)
	assert.Equal(t, "what is phishing?", recs[0].Question)
}

func TestCheckURL_FlaggedShortCircuits(t *testing.T) {
	c := &fakeCompleter{result: domain.Success("should not be used")}
	svc, store := newService(c)
	svc.URLRep = fakeURLRep{result: domain.Success(flaggedReport{hit: true})}

	v, err := svc.CheckURL(context.Background(), domain.URLCheck{URL: "http://evil.test"})
	require.NoError(t, err)

	assert.Equal(t, HighRiskSummary, v.Summary)
	assert.Zero(t, c.calls)
	assert.True(t, v.Signals[domain.SignalURLReputation].Flagged())
	recs := records(t, store)
	require.Len(t, recs, 1)
	assert.Equal(t, HighRiskSummary, recs[0].Result)
}

func TestCheckURL_DegradesWithoutReputation(t *testing.T) {
	cases := map[string]domain.UpstreamResult{
		"unavailable": domain.Unavailable(domain.ReasonNoCredential),
		"failure":     domain.Failure("boom", 503),
		"no match":    domain.Success(flaggedReport{hit: false}),
	}
	for name, rep := range cases {
		t.Run(name, func(t *testing.T) {
			c := &fakeCompleter{result: domain.Success("Looks benign.")}
			svc, _ := newService(c)
			svc.URLRep = fakeURLRep{result: rep}

			v, err := svc.CheckURL(context.Background(), domain.URLCheck{URL: "https://example.com"})
			require.NoError(t, err)
			assert.Equal(t, "Looks benign.", v.Summary)
			assert.Equal(t, 1, c.calls)
			assert.Equal(t, 220, c.maxTokens)
			assert.Equal(t, rep.Outcome, v.Signals[domain.SignalURLReputation].Outcome)
		})
	}
}

func TestCheckSMS_NotePrefixesVerdict(t *testing.T) {
	const note = "Suspected scam/urgent phishing. Recommend caution."
	cases := []struct {
		name    string
		message string
		verdict string
		want    string
	}{
		{"prize scam", "You WIN a FREE prize, verify your bank account now!", "High risk: prize lure asking for bank details.",
			note + "\n\nHigh risk: prize lure asking for bank details."},
		{"short prize", "You WIN a prize!", "High risk.", note + "\n\nHigh risk."},
		{"single keyword", "the account is settled", "Low risk.", note + "\n\nLow risk."},
		{"clean", "see you at lunch", "Low risk.", "Low risk."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeCompleter{result: domain.Success(tc.verdict)}
			svc, store := newService(c)

			v, err := svc.CheckSMS(context.Background(), domain.SMSCheck{Message: tc.message, Sender: "+14155550100"})
			require.NoError(t, err)

			assert.Equal(t, tc.want, v.Summary)
			assert.Equal(t, tc.verdict, v.Completion)
			assert.Contains(t, c.prompt, tc.message)
			recs := records(t, store)
			require.Len(t, recs, 1)
			assert.Equal(t, "+14155550100", recs[0].Sender)
		})
	}
}

func TestCheckEmail_ScansSubjectAndBody(t *testing.T) {
	c := &fakeCompleter{result: domain.Success("Likely phishing.")}
	svc, store := newService(c)

	v, err := svc.CheckEmail(context.Background(), domain.EmailCheck{Subject: "Your Invoice", Body: "see attached"})
	require.NoError(t, err)

	assert.Equal(t, "Quick flagged: suspicious keywords present.\n\nLikely phishing.", v.Summary)
	assert.Equal(t, "Analyze this email for phishing or scam risk.\n\nSubject: Your Invoice\nBody: see attached", c.prompt)
	assert.Equal(t, "Your Invoice", records(t, store)[0].Subject)
}

func TestCompletionFailure_FailsButRecords(t *testing.T) {
	c := &fakeCompleter{result: domain.Failure("rate limited", 429)}
	svc, store := newService(c)

	_, err := svc.CheckEmail(context.Background(), domain.EmailCheck{Subject: "hi", Body: "there"})
	require.Error(t, err)
	assert.True(t, domain.IsUpstreamFailure(err))

	var ue *domain.UpstreamFailureError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 429, ue.StatusCode)

	recs := records(t, store)
	require.Len(t, recs, 1)
	assert.Equal(t, err.Error(), recs[0].Result)
}

func TestCompletionUnavailable_Fails(t *testing.T) {
	c := &fakeCompleter{result: domain.Unavailable(domain.ReasonNoCredential)}
	svc, _ := newService(c)

	_, err := svc.Ask(context.Background(), domain.Question{Text: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ReasonNoCredential)
}

func TestCheckFile_LooksUpHashAndArchives(t *testing.T) {
	c := &fakeCompleter{result: domain.Success("Low risk.")}
	svc, store := newService(c)
	fileRep := &fakeFileRep{result: domain.Success(map[string]any{"data": map[string]any{"id": "x"}})}
	svc.FileRep = fileRep
	samples := &fakeSamples{}
	svc.Samples = samples

	req := domain.NewFileCheck("report.pdf", []byte("%PDF-1.4"))
	v, err := svc.CheckFile(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.Hash, fileRep.hash)
	assert.Equal(t, req.Hash, v.Hash)
	assert.Equal(t, "report.pdf", v.Filename)
	assert.Equal(t, req.Hash+"/report.pdf", samples.key)
	assert.True(t, v.Signals[domain.SignalFileReputation].OK())
	assert.Contains(t, c.prompt, "SHA256 "+req.Hash)
	assert.Equal(t, req.Hash, records(t, store)[0].Hash)
}

func TestCheckFile_SameBytesSameHash(t *testing.T) {
	content := []byte("MZ\x90\x00 sample payload")
	want := domain.ContentHash(content)
	require.Equal(t, want, domain.ContentHash(content))
	require.Len(t, want, 64)

	cases := []struct {
		name     string
		filename string
	}{
		{"first upload", "invoice.exe"},
		{"renamed upload", "INVOICE-copy.zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(&fakeCompleter{result: domain.Success("ok")})
			fileRep := &fakeFileRep{result: domain.Unavailable(domain.ReasonNoCredential)}
			svc.FileRep = fileRep

			v, err := svc.CheckFile(context.Background(), domain.NewFileCheck(tc.filename, content))
			require.NoError(t, err)

			assert.Equal(t, want, fileRep.hash)
			assert.Equal(t, want, v.Hash)
		})
	}

	assert.NotEqual(t, want, domain.ContentHash([]byte("MZ\x90\x00 sample payload!")))
}

func TestCheckFile_ArchiveFailureIgnored(t *testing.T) {
	c := &fakeCompleter{result: domain.Success("ok")}
	svc, _ := newService(c)
	svc.Samples = &fakeSamples{err: errors.New("bucket gone")}

	_, err := svc.CheckFile(context.Background(), domain.NewFileCheck("a.txt", []byte("x")))
	assert.NoError(t, err)
}

func TestCheckIP(t *testing.T) {
	score := 87
	cases := []struct {
		name   string
		result domain.UpstreamResult
		check  func(t *testing.T, v domain.IPVerdict)
	}{
		{"mock", domain.Unavailable(domain.ReasonNoCredential), func(t *testing.T, v domain.IPVerdict) {
			require.NotNil(t, v.Score)
			assert.Equal(t, 0, *v.Score)
			assert.Equal(t, ipMockNote, v.Note)
		}},
		{"success", domain.Success(domain.IPReport{Score: &score, Raw: map[string]any{"isp": "x"}}), func(t *testing.T, v domain.IPVerdict) {
			assert.Equal(t, 87, *v.Score)
			assert.Equal(t, "x", v.Raw["isp"])
			assert.Empty(t, v.Note)
		}},
		{"failure", domain.Failure("unauthorized", 401), func(t *testing.T, v domain.IPVerdict) {
			assert.Nil(t, v.Score)
			assert.Equal(t, "unauthorized", v.Error)
			assert.Equal(t, 401, v.Status)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newService(&fakeCompleter{})
			svc.IPRep = fakeIPRep{result: tc.result}

			v := svc.CheckIP(context.Background(), domain.IPCheck{IP: "1.2.3.4"})
			assert.Equal(t, "1.2.3.4", v.IP)
			tc.check(t, v)

			recs := records(t, store)
			require.Len(t, recs, 1)
			assert.Equal(t, "IP", recs[0].Type)
			assert.Equal(t, "1.2.3.4", recs[0].Details())
		})
	}
}

func TestCheckBreach(t *testing.T) {
	svc, store := newService(&fakeCompleter{})

	hit := svc.CheckBreach(context.Background(), domain.BreachCheck{Email: "Leaked@Example.com"})
	assert.True(t, hit.Found)
	assert.Equal(t, []string{"SampleCorp Breach 2020", "AnotherLeak 2019"}, hit.Breaches)

	miss := svc.CheckBreach(context.Background(), domain.BreachCheck{Email: "nobody@example.com"})
	assert.False(t, miss.Found)
	assert.Equal(t, breachMissNote, miss.Note)

	assert.Len(t, records(t, store), 2)
}

func TestThreatFeed(t *testing.T) {
	cases := []struct {
		name   string
		result domain.UpstreamResult
		want   []domain.FeedItem
	}{
		{"mock", domain.Unavailable(domain.ReasonNoCredential), domain.MockFeed()},
		{"status", domain.Failure("nope", 403), []domain.FeedItem{{Title: "OTX returned status 403", Risk: domain.RiskLow}}},
		{"transport", domain.Failure("dial tcp", 0), []domain.FeedItem{{Title: "Could not fetch OTX feed", Risk: domain.RiskLow}}},
		{"undecodable body", domain.Failure("decode response: invalid character '<'", 0), []domain.FeedItem{{Title: "Could not fetch OTX feed", Risk: domain.RiskLow}}},
		{"empty", domain.Success([]domain.FeedItem{}), []domain.FeedItem{{Title: "OTX returned status 200", Risk: domain.RiskLow}}},
		{"items", domain.Success([]domain.FeedItem{{Title: "Pulse", Risk: domain.RiskMedium}}), []domain.FeedItem{{Title: "Pulse", Risk: domain.RiskMedium}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newService(&fakeCompleter{})
			svc.Feed = fakeFeed{result: tc.result}

			assert.Equal(t, tc.want, svc.ThreatFeed(context.Background()))
			assert.Empty(t, records(t, store))
		})
	}
}

func TestReport_AfterRequests(t *testing.T) {
	svc, _ := newService(&fakeCompleter{result: domain.Success("fine")})
	ctx := context.Background()

	_, err := svc.Report(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Ask(ctx, domain.Question{Text: "q1"})
	require.NoError(t, err)
	rep, err := svc.Report(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(rep.Data), "QnA,q1,fine,2025-01-02T03:04:05Z")
	assert.Len(t, svc.HistoryRecords(ctx), 1)
}

package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

const (
	abuseIPDBURL     = "https://api.abuseipdb.com"
	abuseIPDBTimeout = 10 * time.Second
)

// AbuseIPDB is the IP-reputation adapter.
type AbuseIPDB struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewAbuseIPDB(opts Options) *AbuseIPDB {
	return &AbuseIPDB{
		apiKey:  opts.APIKey,
		baseURL: opts.baseURL(abuseIPDBURL),
		client:  opts.httpClient(abuseIPDBTimeout),
		logger:  opts.logger(),
	}
}

func (a *AbuseIPDB) LookupIP(ctx context.Context, ip string) domain.UpstreamResult {
	if a.apiKey == "" {
		return domain.Unavailable(domain.ReasonNoCredential)
	}
	q := url.Values{}
	q.Set("ipAddress", ip)
	q.Set("maxAgeInDays", "90")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v2/check?"+q.Encode(), nil)
	if err != nil {
		return domain.Failure("build request failed", 0)
	}
	req.Header.Set("Key", a.apiKey)
	req.Header.Set("Accept", "application/json")

	var out struct {
		Data map[string]any `json:"data"`
	}
	if res, ok := fetch(a.client, req, &out, errorLimit); !ok {
		a.logger.Warn("abuseipdb lookup failed", slog.String("ip", ip), slog.Int("status", res.StatusCode), slog.String("error", res.Error))
		return res
	}

	report := domain.IPReport{Raw: out.Data}
	if report.Raw == nil {
		report.Raw = map[string]any{}
	}
	if v, ok := report.Raw["abuseConfidenceScore"].(float64); ok {
		score := int(v)
		report.Score = &score
	}
	return domain.Success(report)
}

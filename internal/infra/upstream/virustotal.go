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
	virusTotalURL     = "https://www.virustotal.com"
	virusTotalTimeout = 15 * time.Second
	virusTotalLimit   = 400
)

// VirusTotal looks files up by SHA-256 in the v3 API.
type VirusTotal struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewVirusTotal(opts Options) *VirusTotal {
	return &VirusTotal{
		apiKey:  opts.APIKey,
		baseURL: opts.baseURL(virusTotalURL),
		client:  opts.httpClient(virusTotalTimeout),
		logger:  opts.logger(),
	}
}

// LookupHash returns the file report as-is on success.
func (v *VirusTotal) LookupHash(ctx context.Context, sha256 string) domain.UpstreamResult {
	if v.apiKey == "" {
		return domain.Unavailable(domain.ReasonNoCredential)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/v3/files/"+url.PathEscape(sha256), nil)
	if err != nil {
		return domain.Failure("build request failed", 0)
	}
	req.Header.Set("x-apikey", v.apiKey)

	var report map[string]any
	if res, ok := fetch(v.client, req, &report, virusTotalLimit); !ok {
		v.logger.Warn("virustotal lookup failed", slog.String("hash", sha256), slog.Int("status", res.StatusCode), slog.String("error", res.Error))
		return res
	}
	return domain.Success(report)
}

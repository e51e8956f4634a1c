package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

const (
	otxURL     = "https://otx.alienvault.com"
	otxTimeout = 15 * time.Second
	otxMaxFeed = 15
)

// OTX reads pulses from AlienVault OTX and maps them to feed items.
type OTX struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewOTX(opts Options) *OTX {
	return &OTX{
		apiKey:  opts.APIKey,
		baseURL: opts.baseURL(otxURL),
		client:  opts.httpClient(otxTimeout),
		logger:  opts.logger(),
	}
}

// Pulses returns a Success payload of []domain.FeedItem, possibly empty.
func (o *OTX) Pulses(ctx context.Context) domain.UpstreamResult {
	if o.apiKey == "" {
		return domain.Unavailable(domain.ReasonNoCredential)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/v1/pulses", nil)
	if err != nil {
		return domain.Failure("build request failed", 0)
	}
	req.Header.Set("X-OTX-API-KEY", o.apiKey)

	var out struct {
		Results []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"results"`
	}
	if res, ok := fetch(o.client, req, &out, errorLimit); !ok {
		o.logger.Warn("otx feed fetch failed", slog.Int("status", res.StatusCode), slog.String("error", res.Error))
		return res
	}

	items := make([]domain.FeedItem, 0, otxMaxFeed)
	for i, p := range out.Results {
		if i == otxMaxFeed {
			break
		}
		title := p.Name
		if title == "" {
			title = p.Description
		}
		if title == "" {
			title = "OTX Pulse"
		}
		items = append(items, domain.FeedItem{Title: title, Risk: domain.RiskMedium})
	}
	return domain.Success(items)
}

package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

const (
	maxBodyBytes = 8 << 20
	errorLimit   = 500
)

// Options shared by every reputation adapter.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
	// Client overrides the HTTP client, mostly for tests.
	Client *http.Client
}

func (o Options) httpClient(def time.Duration) *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = def
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}

// fetch runs req once and decodes a 2xx JSON body into out.
// On any problem it returns a Failure result and false; bodies are cut to bodyLimit.
// StatusCode is set only for non-2xx answers.
func fetch(client *http.Client, req *http.Request, out any, bodyLimit int) (domain.UpstreamResult, bool) {
	resp, err := client.Do(req)
	if err != nil {
		return domain.Failure(transportMessage(err), 0), false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, int64(bodyLimit)))
		return domain.Failure(domain.Truncate(string(body), bodyLimit), resp.StatusCode), false
	}

	// a 2xx with an unreadable body has no failing status to report
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return domain.Failure(fmt.Sprintf("decode response: %v", err), 0), false
	}
	return domain.UpstreamResult{}, true
}

// transportMessage strips the request URL from transport errors so query-string keys never leak.
func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return domain.Truncate(fmt.Sprintf("%s request failed: %v", ue.Op, ue.Err), errorLimit)
	}
	return domain.Truncate(err.Error(), errorLimit)
}

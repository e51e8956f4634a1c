package analysis

import "context"

// Completer is the language-model adapter. A Success payload is the completion text (string).
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) UpstreamResult
}

// URLReputation looks a URL up in a reputation service. A Success payload may implement Flagger.
type URLReputation interface {
	LookupURL(ctx context.Context, url string) UpstreamResult
}

// FileReputation looks a file up by its SHA-256 content hash.
type FileReputation interface {
	LookupHash(ctx context.Context, sha256 string) UpstreamResult
}

// IPReputation returns a Success payload of type IPReport.
type IPReputation interface {
	LookupIP(ctx context.Context, ip string) UpstreamResult
}

// ThreatFeed returns a Success payload of type []FeedItem.
type ThreatFeed interface {
	Pulses(ctx context.Context) UpstreamResult
}

// BreachLookup is local only and never fails.
type BreachLookup interface {
	Lookup(email string) []string
}

// SampleArchive keeps a copy of uploaded files, keyed by content hash.
type SampleArchive interface {
	ArchiveSample(ctx context.Context, hash, filename string, content []byte) (string, error)
}

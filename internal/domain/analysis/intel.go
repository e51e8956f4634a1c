package analysis

// Risk label of a feed item
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

type FeedItem struct {
	Title string `json:"title"`
	Risk  Risk   `json:"risk"`
}

// MockFeed is served when no feed credential is configured.
func MockFeed() []FeedItem {
	return []FeedItem{
		{Title: "New phishing site targeting banks", Risk: RiskHigh},
		{Title: "Suspicious SMS campaign detected", Risk: RiskMedium},
		{Title: "Fake invoice PDF circulating", Risk: RiskHigh},
		{Title: "Safe cybersecurity newsletter", Risk: RiskLow},
	}
}

// IPReport is the decoded IP-reputation payload.
type IPReport struct {
	// Score is nil when the service omitted abuseConfidenceScore.
	Score *int           `json:"abuseConfidenceScore"`
	Raw   map[string]any `json:"raw"`
}

// IPVerdict is returned by IP checks; no completion call is involved.
type IPVerdict struct {
	IP     string         `json:"ip"`
	Score  *int           `json:"abuseConfidenceScore,omitempty"`
	Raw    map[string]any `json:"raw,omitempty"`
	Note   string         `json:"note,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status int            `json:"status,omitempty"`
}

// BreachVerdict is returned by breach checks.
type BreachVerdict struct {
	Email    string   `json:"email"`
	Found    bool     `json:"found"`
	Breaches []string `json:"breaches,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// FileVerdict adds file identity to the aggregated verdict.
type FileVerdict struct {
	Filename string `json:"filename"`
	Hash     string `json:"hash"`
	Verdict
}

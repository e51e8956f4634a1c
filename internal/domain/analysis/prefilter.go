package analysis

import "strings"

// PreFilter is a local keyword scan that yields an advisory note.
type PreFilter struct {
	Keywords []string
	Note     string
}

var SMSPreFilter = PreFilter{
	Keywords: []string{"win", "prize", "lottery", "urgent", "free", "password", "verify", "bank", "account"},
	Note:     "Suspected scam/urgent phishing. Recommend caution.",
}

var EmailPreFilter = PreFilter{
	Keywords: []string{"paypal", "account locked", "reset password", "click here", "urgent", "wire transfer", "invoice"},
	Note:     "Quick flagged: suspicious keywords present.",
}

// Scan returns the note when any keyword occurs as a substring of the lower-cased text.
func (p PreFilter) Scan(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range p.Keywords {
		if strings.Contains(lower, k) {
			return p.Note, true
		}
	}
	return "", false
}

// ScanSMS runs the SMS keyword set over the message.
func ScanSMS(req SMSCheck) (string, bool) {
	return SMSPreFilter.Scan(req.Message)
}

// ScanEmail runs the email keyword set over subject and body.
func ScanEmail(req EmailCheck) (string, bool) {
	return EmailPreFilter.Scan(req.Subject + " " + req.Body)
}

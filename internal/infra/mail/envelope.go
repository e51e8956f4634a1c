package mail

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

// ParseEmail reads a raw RFC 822 message into an email check.
// HTML parts win over plain text because html2text keeps link targets,
// which are most of the signal in phishing mail.
func ParseEmail(r io.Reader) (domain.EmailCheck, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return domain.EmailCheck{}, domain.InvalidInput("could not parse email message: %v", err)
	}

	body := strings.TrimSpace(env.Text)
	if strings.TrimSpace(env.HTML) != "" {
		text, err := html2text.FromString(env.HTML, html2text.Options{})
		if err != nil {
			return domain.EmailCheck{}, fmt.Errorf("convert html body: %w", err)
		}
		body = strings.TrimSpace(text)
	}

	check := domain.EmailCheck{
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
		Body:    body,
	}
	if check.Subject == "" && check.Body == "" {
		return domain.EmailCheck{}, domain.InvalidInput("email message has neither subject nor body")
	}
	return check, nil
}

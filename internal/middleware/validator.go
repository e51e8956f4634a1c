package middleware

import (
	"net/mail"
	"net/netip"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

// Input validation and normalization. Every failure is a domain.ClientInputError.

// RequireText rejects empty (after sanitizing) mandatory fields.
func RequireText(field, value string) (string, error) {
	v := SanitizeString(value)
	if v == "" {
		return "", domain.InvalidInput("%s cannot be empty", field)
	}
	return v, nil
}

// ValidateURL checks that rawURL parses with an http(s) scheme and a host, and
// returns the request with the host in ASCII form.
func ValidateURL(rawURL string) (domain.URLCheck, error) {
	rawURL = SanitizeString(rawURL)
	if rawURL == "" {
		return domain.URLCheck{}, domain.InvalidInput("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.URLCheck{}, domain.InvalidInput("invalid URL format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.URLCheck{}, domain.InvalidInput("invalid URL scheme: %q (allowed: http, https)", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return domain.URLCheck{}, domain.InvalidInput("URL has no host")
	}

	ascii := host
	if _, err := netip.ParseAddr(host); err != nil {
		ascii, err = idna.Lookup.ToASCII(strings.ToLower(host))
		if err != nil {
			return domain.URLCheck{}, domain.InvalidInput("invalid URL host %q", host)
		}
	}
	return domain.URLCheck{URL: rawURL, Host: ascii}, nil
}

// ValidateIP accepts IPv4 and IPv6 literals and returns the canonical form.
func ValidateIP(raw string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return "", domain.InvalidInput("invalid IP address %q", raw)
	}
	return addr.String(), nil
}

// ValidateEmail accepts a bare address (no display name).
func ValidateEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.InvalidInput("email query parameter is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.InvalidInput("invalid email address %q", raw)
	}
	return addr.Address, nil
}

// ValidateFilename checks the upload allow-list; the error lists allowed extensions.
func ValidateFilename(name string) (string, error) {
	name = filepath.Base(SanitizeString(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", domain.InvalidInput("file name cannot be empty")
	}
	if !domain.ExtensionAllowed(name) {
		return "", domain.InvalidInput("Unsupported file type. Allowed: %s", strings.Join(domain.AllowedExtensions, ", "))
	}
	return name, nil
}

// NormalizeSender formats an optional phone number as E.164. Numbers without a
// leading + are read in defaultRegion.
func NormalizeSender(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(defaultRegion))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", domain.InvalidInput("invalid sender phone number %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

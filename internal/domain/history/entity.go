package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Inputs holds the kind-specific identifying fields of a request.
type Inputs struct {
	Question string `json:"question,omitempty"`
	URL      string `json:"url,omitempty"`
	Message  string `json:"message,omitempty"`
	Sender   string `json:"sender,omitempty"`
	Filename string `json:"filename,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body,omitempty"`
	IP       string `json:"ip,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Details is the first present identifying field, used in the exported table.
func (in Inputs) Details() string {
	for _, v := range []string{in.Question, in.URL, in.Message, in.Filename, in.Subject, in.IP, in.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Record is one request/response pair. Inputs is embedded so the JSON stays flat.
type Record struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Inputs
	Result string    `json:"result"`
	Time   time.Time `json:"time"`
}

// legacyTimeLayouts are accepted on read besides RFC 3339; older history files
// carry naive local timestamps such as "2025-01-02 03:04:05.123456".
var legacyTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// UnmarshalJSON accepts records with a legacy timestamp or no id.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		Time *string `json:"time"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Time == nil || strings.TrimSpace(*aux.Time) == "" {
		r.Time = time.Time{}
		return nil
	}
	t, err := ParseTime(*aux.Time)
	if err != nil {
		return err
	}
	r.Time = t
	return nil
}

// ParseTime reads RFC 3339 or a legacy naive timestamp (taken as local time).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized record time %q", s)
}

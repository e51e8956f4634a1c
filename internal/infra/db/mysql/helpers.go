package mysql

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func encodeInputs(in history.Inputs) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeInputs(raw string, in *history.Inputs) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), in)
}

package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2025-01-02T03:04:05Z", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"rfc3339 with offset", "2025-01-02T10:04:05+07:00", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"naive with space", "2025-01-02 03:04:05.123456", time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.Local)},
		{"naive with T", "2025-01-02T03:04:05", time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTime(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"type":"SMS","message":"hi","sender":"+1","result":"ok","time":"2025-01-02 03:04:05"}`), &r))
	assert.Empty(t, r.ID)
	assert.Equal(t, "SMS", r.Type)
	assert.Equal(t, "hi", r.Message)
	assert.Equal(t, "+1", r.Sender)
	assert.Equal(t, 3, r.Time.Hour())

	var missing Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","type":"IP","ip":"1.2.3.4","result":"x"}`), &missing))
	assert.True(t, missing.Time.IsZero())
	assert.Equal(t, "1.2.3.4", missing.IP)

	var bad Record
	assert.Error(t, json.Unmarshal([]byte(`{"type":"IP","time":"soon"}`), &bad))
}

func TestRecord_RoundTripKeepsTime(t *testing.T) {
	in := Record{ID: "x", Type: "URL", Inputs: Inputs{URL: "http://a"}, Result: "r", Time: time.Date(2025, 5, 6, 7, 8, 9, 10, time.UTC)}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Record
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.Time.Equal(out.Time))
	assert.Equal(t, in.Inputs, out.Inputs)
}

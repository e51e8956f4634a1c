package breach

import "strings"

// Table is an in-process breach dataset keyed by lower-cased email.
type Table struct {
	entries map[string][]string
}

// NewDemoTable returns the built-in sample dataset.
func NewDemoTable() *Table {
	return &Table{entries: map[string][]string{
		"leaked@example.com":     {"SampleCorp Breach 2020", "AnotherLeak 2019"},
		"compromised@domain.com": {"InvoiceLeaks 2022"},
	}}
}

// Lookup returns the breach names for email, nil when unknown.
func (t *Table) Lookup(email string) []string {
	found := t.entries[strings.ToLower(strings.TrimSpace(email))]
	if len(found) == 0 {
		return nil
	}
	out := make([]string, len(found))
	copy(out, found)
	return out
}

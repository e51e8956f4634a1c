package breach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Lookup(t *testing.T) {
	tbl := NewDemoTable()

	assert.Equal(t, []string{"SampleCorp Breach 2020", "AnotherLeak 2019"}, tbl.Lookup("leaked@example.com"))
	assert.Equal(t, []string{"InvoiceLeaks 2022"}, tbl.Lookup("Compromised@Domain.com"))
	assert.Nil(t, tbl.Lookup("nobody@example.com"))
}

func TestTable_LookupReturnsCopy(t *testing.T) {
	tbl := NewDemoTable()

	got := tbl.Lookup("leaked@example.com")
	got[0] = "mutated"

	assert.Equal(t, "SampleCorp Breach 2020", tbl.Lookup("leaked@example.com")[0])
}

package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVRequest(t *testing.T) {
	input := "client_id,cookie_hash,password_hash\n" +
		"1234,ab77777,hh11111\n" +
		"2234, cd29343,\n" +
		"3334\n"

	req, err := ReadCSVRequest(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"client_id", "cookie_hash", "password_hash"}, req.FieldIDs())
	assert.Equal(t, []string{"1234", "2234", "3334"}, req.Values["client_id"])
	assert.Equal(t, []string{"ab77777", "cd29343", ""}, req.Values["cookie_hash"])
	assert.Equal(t, []string{"hh11111", "", ""}, req.Values["password_hash"])
	assert.True(t, req.AlignedRows)
	assert.NoError(t, ValidateRequest(req))
}

func TestReadCSVRequestKeepsRowsAligned(t *testing.T) {
	input := `client,device
alice,devA
bob,
carol,devC
`

	req, err := ReadCSVRequest(strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, req.AlignedRows)
	assert.Equal(t, []string{"alice", "bob", "carol"}, req.Values["client"])
	assert.Equal(t, []string{"devA", "", "devC"}, req.Values["device"])
}

func TestReadCSVRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"extra column", "a,b\n1,2,3\n"},
		{"bad quoting", "a,b\n\"1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSVRequest(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadAndValidateCSV(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(good, []byte("a,b\n1,x\n2,x\n"), 0644))
	req, err := LoadAndValidateCSV(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x"}, req.Values["b"])

	dup := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("a,a\n1,2\n"), 0644))
	_, err = LoadAndValidateCSV(dup)
	assert.Equal(t, []string{"fields[1].field_id"}, validationFields(t, err))

	_, err = LoadAndValidateCSV(filepath.Join(dir, "records.txt"))
	assert.Error(t, err)

	_, err = LoadAndValidateCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

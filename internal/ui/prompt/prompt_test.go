// File: internal/ui/prompt/prompt_test.go
package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("terminal gone")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact match", "db.example.co\n", true},
		{"surrounding whitespace", "  db.example.co  \n", true},
		{"no trailing newline", "db.example.co", true},
		{"mismatch", "other.example.co\n", false},
		{"empty input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewStandardPrompter(strings.NewReader(tt.input), &out)

			ok, err := p.Confirm("Migrate into db.example.co?", "db.example.co")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "Migrate into db.example.co?")
			assert.Contains(t, out.String(), "type 'db.example.co'")
		})
	}
}

func TestConfirmErrors(t *testing.T) {
	_, err := NewStandardPrompter(strings.NewReader("x\n"), &bytes.Buffer{}).Confirm("?", "")
	assert.Error(t, err)

	_, err = NewStandardPrompter(failingReader{}, &bytes.Buffer{}).Confirm("?", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal gone")
}

func TestAutoPrompter(t *testing.T) {
	ok, err := AutoPrompter{}.Confirm("anything", "value")
	require.NoError(t, err)
	assert.True(t, ok)
}

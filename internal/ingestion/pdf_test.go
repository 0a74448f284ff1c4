package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"bpoc/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPDFText(t *testing.T) {
	text, err := ExtractPDFText(testhelpers.MinimalPDF("Maria Santos Customer Support"))
	require.NoError(t, err)
	assert.Contains(t, text, "Maria Santos Customer Support")
}

func TestExtractPDFTextRejectsGarbage(t *testing.T) {
	_, err := ExtractPDFText([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestExtractPDFTextEmptyPage(t *testing.T) {
	_, err := ExtractPDFText(testhelpers.MinimalPDF(""))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := strings.Repeat("ñ", 10)
	out := truncate(s, 5)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 4, len(out))
}

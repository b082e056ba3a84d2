package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghscan/internal/core/domain"
)

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("json", formatJSON, formatYAML))

	err := checkFormat("table", formatJSON, formatYAML)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "json, yaml")
}

func TestSummaryLine(t *testing.T) {
	total := 40
	assert.Equal(t, "Scanned 4 of 40, matched 1",
		summaryLine(domain.ScanStats{Scanned: 4, Matched: 1, Total: &total}))
	assert.Equal(t, "Scanned 0 of ?, matched 0", summaryLine(domain.ScanStats{}))
}

func TestWriteMatchTable_FallsBackToName(t *testing.T) {
	buf := new(bytes.Buffer)

	err := writeMatchTable(buf, []domain.Node{{"name": "solo"}})

	require.NoError(t, err)
	assert.Equal(t, "NAME  ARCHIVED  FILE\nsolo  -         -\n", buf.String())
}

func TestWriteRunTable_Incomplete(t *testing.T) {
	buf := new(bytes.Buffer)

	err := writeRunTable(buf, []domain.ScanRun{{ID: "abc"}})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "incomplete")
	assert.Contains(t, buf.String(), "abc ")
}

func TestWriteJSON_DoesNotEscapeHTML(t *testing.T) {
	buf := new(bytes.Buffer)

	require.NoError(t, writeJSON(buf, map[string]string{"text": "a < b && c"}))

	assert.Contains(t, buf.String(), "a < b && c")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", shortID("3f2a9c1e-0000-4000-8000-000000000001"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestProgress_DisabledForBuffers(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newProgress(buf)

	p.update(1, "api")
	p.done()

	assert.False(t, p.enabled)
	assert.Empty(t, buf.String())
}

package pdftext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRejectsInvalidInput(t *testing.T) {
	tests := map[string][]byte{
		"empty":      nil,
		"plain text": []byte("What is a linked list?"),
		"truncated":  []byte("%PDF-1.4\n1 0 obj\n"),
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(content)
			assert.Error(t, err)
		})
	}
}

func TestExtractFile(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))
	_, err = ExtractFile(path)
	assert.Error(t, err)
}

// Package pdftext pulls plain text out of PDF files so a question can be read
// from a document.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF parses but carries no extractable text.
var ErrNoText = errors.New("pdf has no extractable text")

// Extract returns the text of every page, one page per line group. Pages that
// fail to extract are skipped.
func Extract(content []byte) (text string, err error) {
	if len(content) == 0 {
		return "", errors.New("empty pdf")
	}
	// The reader panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

// ExtractFile reads path and extracts its text.
func ExtractFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Extract(content)
}

package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// PDF writes doc as an A4 PDF: title, question, one numbered paragraph per
// point and, when present, the code snippet in a monospace block.
func PDF(w io.Writer, doc Document) error {
	return writePDF(w, doc, true)
}

func writePDF(w io.Writer, doc Document, compress bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	// Core fonts are cp1252; characters outside it are dropped.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(doc.title(), true)
	pdf.SetCreator("interview-assistant", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(doc.title()), "", "L", false)
	pdf.Ln(2)

	if doc.Topic != "" || doc.Language != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.MultiCell(0, lineHeight, tr(metaLine(doc)), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(1)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, lineHeight+1, tr("Q: "+doc.Question), "", "L", false)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 11)
	for i, point := range doc.Points {
		pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, point)), "", "L", false)
		pdf.Ln(1.5)
	}

	if doc.Snippet != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, lineHeight, "Example", "", "L", false)
		pdf.SetFont("Courier", "", 9)
		pdf.SetFillColor(242, 242, 242)
		pdf.MultiCell(0, 4.5, tr(doc.Snippet), "", "L", true)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func metaLine(doc Document) string {
	switch {
	case doc.Topic != "" && doc.Language != "":
		return fmt.Sprintf("Topic: %s | Language: %s", doc.Topic, doc.Language)
	case doc.Topic != "":
		return "Topic: " + doc.Topic
	default:
		return "Language: " + doc.Language
	}
}

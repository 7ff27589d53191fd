// Package report renders a feedback report as a PDF document, for filing by hand when no
// tracker is configured.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

const (
	labelWidth = 45.0
	lineHeight = 6.0
)

// Write renders fb as an A4 PDF: title, description, environment table and the
// annotated screenshot scaled to the page width.
func Write(w io.Writer, fb *feedback.Feedback) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fb.Title, true)
	pdf.SetCreator("feedback-tools", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(contentW, 8, tr(fb.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	meta := "Feedback " + fb.ID
	if !fb.CreatedAt.IsZero() {
		meta += " - " + fb.CreatedAt.UTC().Format(time.RFC3339)
	}
	pdf.CellFormat(contentW, 5, tr(meta), "", 1, "L", false, 0, "")
	if len(fb.Labels) > 0 {
		pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Labels: %v", fb.Labels)), "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	if fb.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(contentW, lineHeight, tr(fb.Description), "", "L", false)
		pdf.Ln(4)
	}

	if pairs := fb.Metadata.Pairs(); len(pairs) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 8, "Environment", "", 1, "L", false, 0, "")
		pdf.SetFillColor(240, 240, 240)
		for i, p := range pairs {
			fill := i%2 == 0
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(labelWidth, lineHeight, tr(p.Label), "", 0, "L", fill, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(contentW-labelWidth, lineHeight, tr(p.Value), "", "L", fill)
		}
		pdf.Ln(4)
	}

	if fb.HasScreenshot() {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader("screenshot", opts, bytes.NewReader(fb.Screenshot))
		if !pdf.Ok() {
			return fmt.Errorf("failed to embed screenshot: %w", pdf.Error())
		}

		w, h := contentW, contentW*info.Height()/info.Width()
		if maxH := pageH - top - bottom; h > maxH {
			w, h = w*maxH/h, maxH
		}
		if pdf.GetY()+h > pageH-bottom {
			pdf.AddPage()
		}
		pdf.ImageOptions("screenshot", left, pdf.GetY(), w, h, false, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// WriteFile renders fb to a PDF file at path.
func WriteFile(path string, fb *feedback.Feedback) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, fb); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

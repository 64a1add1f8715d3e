package services

import (
	"bytes"
	"context"
	"os"
	"strings"

	"legalcase-platform/internal/logger"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of uploaded PDF files so the
// ingestion pipeline can chunk it like any pasted document.
type PDFExtractor struct {
	maxFileSize int64
}

func NewPDFExtractor(maxFileSize int64) *PDFExtractor {
	return &PDFExtractor{maxFileSize: maxFileSize}
}

// ExtractionResult is the outcome of one PDF extraction.
type ExtractionResult struct {
	Text         string
	Pages        int
	WordCount    int
	QualityScore float64
}

// ExtractFile reads the PDF at path and returns its text. Files whose
// extracted text fails the quality gate are rejected rather than ingested
// as garbage.
func (e *PDFExtractor) ExtractFile(ctx context.Context, path string) (*ExtractionResult, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, Errorf(KindInvalidInput, "pdf.extract", "stat pdf file: %v", err)
	}
	if e.maxFileSize > 0 && stat.Size() > e.maxFileSize {
		return nil, Errorf(KindInvalidInput, "pdf.extract",
			"pdf is %d bytes, limit is %d", stat.Size(), e.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, Errorf(KindInvalidInput, "pdf.extract", "read pdf file: %v", err)
	}
	return e.Extract(ctx, content)
}

// Extract parses the PDF bytes page by page. Pages that fail to decode are
// skipped with a warning; the whole document fails only when nothing usable
// comes out.
func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (*ExtractionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, Errorf(KindInvalidInput, "pdf.extract", "parse pdf: %v", err)
	}

	var b strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Skipping unreadable PDF page", "page", i, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	extracted := strings.TrimSpace(b.String())
	if extracted == "" {
		return nil, Errorf(KindInvalidInput, "pdf.extract", "no text extracted from %d pages", pages)
	}

	result := &ExtractionResult{
		Text:         extracted,
		Pages:        pages,
		WordCount:    len(strings.Fields(extracted)),
		QualityScore: textQuality(extracted),
	}
	if result.QualityScore < 0.3 {
		return nil, Errorf(KindInvalidInput, "pdf.extract",
			"extracted text quality %.2f too low, likely a scanned or corrupt pdf", result.QualityScore)
	}
	return result, nil
}

// textQuality scores extracted text between 0 and 1. Scanned PDFs and
// broken encodings show up as low alphanumeric ratios and replacement
// runes.
func textQuality(text string) float64 {
	if len(text) < 10 {
		return 0.1
	}

	var alphanumeric, printable, corrupted int
	total := 0
	for _, r := range text {
		total++
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			alphanumeric++
			printable++
		case r == ' ' || r == '\n' || r == '\t':
			printable++
		case r == '�':
			corrupted++
		case r >= 32:
			printable++
		}
	}

	score := float64(printable)/float64(total)*0.5 + float64(alphanumeric)/float64(total)
	score -= float64(corrupted) / float64(total) * 2.0

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

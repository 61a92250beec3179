package extract

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"resumelens/internal/errors"
)

// maxFragmentLength bounds a single whitespace-delimited token; longer
// runs are corrupted glyph streams, not words.
const maxFragmentLength = 80

// extractPDF pulls glyph text from every page, filtering out graphics
// artifacts. When the result is below pdfTextThreshold the PDF is treated
// as image-based and routed through OCR.
func (e *Extractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeCorruptFile,
			"could not open PDF; the file may be corrupted or password-protected", err).
			WithContext("strategy", "pdf")
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Skipping unreadable PDF page", "page", pageNum, "error", err.Error())
			continue
		}
		sb.WriteString(filterFragments(pageText))
		sb.WriteString("\n")
	}

	text := sb.String()
	if len(strings.TrimSpace(text)) < pdfTextThreshold {
		e.logger.Info("PDF has no usable glyph text, falling back to OCR",
			"chars", len(strings.TrimSpace(text)))
		return e.extractViaOCR(data)
	}
	return text, nil
}

// filterFragments drops whitespace-only and pure-symbol tokens and
// implausibly long runs, rejoining the survivors with single spaces.
func filterFragments(pageText string) string {
	fields := strings.Fields(pageText)
	kept := fields[:0]
	for _, f := range fields {
		if len(f) > maxFragmentLength {
			continue
		}
		if isPureSymbol(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func isPureSymbol(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Package extract converts uploaded resume documents into raw text,
// selecting a strategy per file type and falling back to OCR for
// image-based PDFs.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"resumelens/internal/errors"
)

// MinContentLength is the smallest trimmed extraction result considered a
// success. Anything shorter fails with a typed error, never a silent
// empty string.
const MinContentLength = 50

// pdfTextThreshold is the character count below which a PDF is treated as
// image-based and routed to OCR.
const pdfTextThreshold = 30

// DocumentType identifies the extraction strategy for an upload.
type DocumentType int

const (
	TypeUnknown DocumentType = iota
	TypePDF
	TypeWord
	TypePlainText
)

func (t DocumentType) String() string {
	switch t {
	case TypePDF:
		return "pdf"
	case TypeWord:
		return "word"
	case TypePlainText:
		return "text"
	default:
		return "unknown"
	}
}

// Document is an uploaded file: immutable bytes plus the declared media
// type and filename. It is discarded once text is extracted.
type Document struct {
	Filename  string
	MediaType string
	Data      []byte
}

// DetectType maps a document's declared media type and filename extension
// to an extraction strategy. Unknown types fall through to a plain-text
// attempt rather than failing outright.
func DetectType(filename, mediaType string) DocumentType {
	switch mediaType {
	case "application/pdf":
		return TypePDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return TypeWord
	case "text/plain":
		return TypePlainText
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".docx", ".doc":
		return TypeWord
	case ".txt":
		return TypePlainText
	}
	return TypeUnknown
}

// OCREngine recognizes text in a raster image. The production engine
// wraps tesseract; tests substitute a stub.
type OCREngine interface {
	Recognize(image []byte) (string, error)
}

// Extractor turns Documents into text.
type Extractor struct {
	ocr    OCREngine
	logger *errors.Logger

	// pageImage locates the scan image to OCR. Tests swap it out to
	// exercise the fallback without a rasterized PDF fixture.
	pageImage func(data []byte) ([]byte, error)
}

// New returns an Extractor backed by the tesseract OCR engine.
func New(logger *errors.Logger) *Extractor {
	return &Extractor{ocr: tesseractEngine{}, logger: logger, pageImage: firstPageImage}
}

// NewWithOCR returns an Extractor using the supplied OCR engine.
func NewWithOCR(logger *errors.Logger, ocr OCREngine) *Extractor {
	return &Extractor{ocr: ocr, logger: logger, pageImage: firstPageImage}
}

// Extract runs the strategy for the document's type and validates the
// result against the minimum content threshold.
func (e *Extractor) Extract(doc Document) (string, error) {
	docType := DetectType(doc.Filename, doc.MediaType)
	e.logger.Debug("Extracting document text",
		"filename", doc.Filename,
		"type", docType.String(),
		"bytes", len(doc.Data))

	var text string
	var err error
	strategy := docType.String()

	switch docType {
	case TypePDF:
		text, err = e.extractPDF(doc.Data)
	case TypeWord:
		text, err = extractWord(doc.Data)
	case TypePlainText, TypeUnknown:
		strategy = "text"
		text, err = extractPlainText(doc.Data)
	}
	if err != nil {
		return "", err
	}

	text = cleanupExtracted(text)

	if n := len(strings.TrimSpace(text)); n < MinContentLength {
		return "", errors.NewExtractionError(errors.ErrCodeContentTooShort,
			fmt.Sprintf("extracted text is too short to analyze (%d characters); try uploading a different format", n), nil).
			WithContext("strategy", strategy).
			WithContext("chars", n)
	}

	e.logger.Info("Document text extracted",
		"filename", doc.Filename,
		"strategy", strategy,
		"chars", len(text))
	return text, nil
}

func extractPlainText(data []byte) (string, error) {
	text := strings.ToValidUTF8(string(data), "")
	if strings.TrimSpace(text) == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyContent,
			"file contains no readable text", nil).
			WithContext("strategy", "text").
			WithContext("chars", 0)
	}
	return text, nil
}

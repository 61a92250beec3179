package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"resumelens/internal/errors"
)

func testExtractor() *Extractor {
	return NewWithOCR(errors.NewLogger(slog.LevelError), stubOCR{})
}

type stubOCR struct{}

func (stubOCR) Recognize([]byte) (string, error) { return "", nil }

// ocrFunc adapts a function to the OCREngine interface.
type ocrFunc func(image []byte) (string, error)

func (f ocrFunc) Recognize(image []byte) (string, error) { return f(image) }

func TestDetectType(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		mediaType string
		want      DocumentType
	}{
		{"pdf media type", "cv.bin", "application/pdf", TypePDF},
		{"docx media type", "cv.bin", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", TypeWord},
		{"doc media type", "cv.bin", "application/msword", TypeWord},
		{"plain media type", "cv.bin", "text/plain", TypePlainText},
		{"pdf extension", "resume.PDF", "application/octet-stream", TypePDF},
		{"docx extension", "resume.docx", "", TypeWord},
		{"txt extension", "resume.txt", "", TypePlainText},
		{"unknown", "resume.xyz", "application/octet-stream", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.filename, tt.mediaType); got != tt.want {
				t.Errorf("DetectType(%q, %q) = %v, want %v", tt.filename, tt.mediaType, got, tt.want)
			}
		})
	}
}

func TestExtractPlainText(t *testing.T) {
	content := "A perfectly ordinary plain-text resume with more than fifty characters of content in it."

	got, err := testExtractor().Extract(Document{
		Filename:  "resume.txt",
		MediaType: "text/plain",
		Data:      []byte(content),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got != content {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestExtractRejectsShortContent(t *testing.T) {
	_, err := testExtractor().Extract(Document{
		Filename:  "resume.txt",
		MediaType: "text/plain",
		Data:      []byte("too short"),
	})
	if err == nil {
		t.Fatal("expected error for short content")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeContentTooShort {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeContentTooShort)
	}
	if appErr.Context["strategy"] != "text" {
		t.Errorf("strategy context = %v, want text", appErr.Context["strategy"])
	}
	if _, ok := appErr.Context["chars"]; !ok {
		t.Error("error context missing character count")
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractWordDocument(t *testing.T) {
	docx := buildDocx(t, `<w:document><w:body>`+
		`<w:p><w:r><w:t>Jane Doe, Senior Software Engineer</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Ten years of experience building distributed systems in Go.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := testExtractor().Extract(Document{
		Filename: "resume.docx",
		Data:     docx,
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(got, "Jane Doe, Senior Software Engineer") {
		t.Errorf("paragraph text missing: %q", got)
	}
	if !strings.Contains(got, "distributed systems in Go") {
		t.Errorf("second paragraph missing: %q", got)
	}
	if strings.Contains(got, "<w:") {
		t.Errorf("XML tags leaked into output: %q", got)
	}
}

func TestExtractWordSalvagesLegacyDoc(t *testing.T) {
	// A binary .doc is not a zip archive: OLE magic, binary noise, and
	// the document prose stored as plain character runs.
	var doc bytes.Buffer
	doc.Write([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	doc.Write([]byte{0x00, 0x03, 0x00, 0xFE, 0x01, 0x00})
	doc.WriteString("Jane Doe, Senior Software Engineer")
	doc.Write([]byte{0x00, 0x07, 0x02})
	doc.WriteString("Ten years of experience building distributed systems in Go.")
	doc.Write([]byte{0x00, 0x00, 0xFF, 0xFF})

	got, err := testExtractor().Extract(Document{
		Filename: "resume.doc",
		Data:     doc.Bytes(),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(got, "Jane Doe, Senior Software Engineer") {
		t.Errorf("salvaged text missing first run: %q", got)
	}
	if !strings.Contains(got, "distributed systems in Go") {
		t.Errorf("salvaged text missing second run: %q", got)
	}
	if strings.ContainsRune(got, 0xD0) {
		t.Errorf("binary bytes leaked into output: %q", got)
	}
}

func TestExtractWordLegacyDocWithoutText(t *testing.T) {
	// Printable runs shorter than the salvage minimum are noise.
	_, err := testExtractor().Extract(Document{
		Filename: "resume.doc",
		Data:     []byte{0xD0, 0xCF, 0x11, 0xE0, 'a', 'b', 0x00, 'x', 0x01},
	})
	if err == nil {
		t.Fatal("expected error for legacy .doc without salvageable text")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeEmptyContent {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeEmptyContent)
	}
}

// buildTextlessPDF assembles a well-formed single-page PDF with no
// content stream, the glyph-extraction result of a pure scan.
func buildTextlessPDF(t *testing.T) []byte {
	t.Helper()

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>\nendobj\n",
		"4 0 obj\n<< /Length 0 >>\nstream\n\nendstream\nendobj\n",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for _, obj := range objects {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	pdfData := buildTextlessPDF(t)
	scan := []byte("raster-page-scan")

	var pageImageCalls int
	var recognized []byte
	e := &Extractor{
		logger: errors.NewLogger(slog.LevelError),
		ocr: ocrFunc(func(image []byte) (string, error) {
			recognized = image
			return "| am a senior engineer with ten years of backend experience in Go and Python.", nil
		}),
		pageImage: func(data []byte) ([]byte, error) {
			pageImageCalls++
			if !bytes.Equal(data, pdfData) {
				t.Error("page image lookup did not receive the original PDF bytes")
			}
			return scan, nil
		},
	}

	got, err := e.Extract(Document{
		Filename:  "scan.pdf",
		MediaType: "application/pdf",
		Data:      pdfData,
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if pageImageCalls != 1 {
		t.Errorf("page image extracted %d times, want 1", pageImageCalls)
	}
	if !bytes.Equal(recognized, scan) {
		t.Errorf("OCR received %q, want the page scan", recognized)
	}
	if !strings.HasPrefix(got, "I am a senior engineer") {
		t.Errorf("OCR corrections not applied: %q", got)
	}
}

func TestExtractPDFOCRFailure(t *testing.T) {
	pdfData := buildTextlessPDF(t)

	e := &Extractor{
		logger: errors.NewLogger(slog.LevelError),
		ocr: ocrFunc(func([]byte) (string, error) {
			return "", fmt.Errorf("tesseract unavailable")
		}),
		pageImage: func([]byte) ([]byte, error) {
			return []byte("raster-page-scan"), nil
		},
	}

	_, err := e.Extract(Document{
		Filename:  "scan.pdf",
		MediaType: "application/pdf",
		Data:      pdfData,
	})
	if err == nil {
		t.Fatal("expected error when OCR fails")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeOCRFailed {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeOCRFailed)
	}
}

func TestFilterFragments(t *testing.T) {
	in := "Software Engineer ~~~ ••• " + strings.Repeat("x", 100) + " at Acme"
	got := filterFragments(in)

	if got != "Software Engineer at Acme" {
		t.Errorf("got %q", got)
	}
}

func TestCorrectOCRText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"| am a software engineer", "I am a software engineer"},
		{"devel0per with g1thub profile", "developer with glthub profile"},
		{"cla5s leader", "class leader"},
		{"worked 10 years at 3 companies", "worked 10 years at 3 companies"},
	}

	for _, tt := range tests {
		if got := correctOCRText(tt.in); got != tt.want {
			t.Errorf("correctOCRText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanupExtracted(t *testing.T) {
	in := "Confidential\nReal resume content line one\nConfidential\nAnother   content\tline\nConfidential\n\n\n\n\nfinal line"

	got := cleanupExtracted(in)

	if strings.Contains(got, "Confidential") {
		t.Errorf("repeated boilerplate survived: %q", got)
	}
	if strings.Contains(got, "   ") || strings.Contains(got, "\t") {
		t.Errorf("whitespace runs not normalized: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank-line run not collapsed: %q", got)
	}
	if !strings.Contains(got, "Real resume content line one") || !strings.Contains(got, "final line") {
		t.Errorf("real content lost: %q", got)
	}
}

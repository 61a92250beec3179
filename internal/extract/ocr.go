package extract

import (
	"bytes"
	"io"
	"regexp"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"resumelens/internal/errors"
)

// extractViaOCR recognizes text in the scan image embedded in the first
// page of an image-based PDF. Later pages are not OCRed: single-page
// scans dominate in practice and per-page OCR cost is high.
func (e *Extractor) extractViaOCR(data []byte) (string, error) {
	image, err := e.pageImage(data)
	if err != nil {
		return "", err
	}

	text, err := e.ocr.Recognize(image)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeOCRFailed,
			"optical character recognition failed; try uploading a text-based PDF or Word document", err).
			WithContext("strategy", "ocr")
	}

	return correctOCRText(text), nil
}

// firstPageImage returns the largest raster image embedded in page 1,
// which for scanned documents is the page scan itself.
func firstPageImage(data []byte) ([]byte, error) {
	images, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{"1"}, model.NewDefaultConfiguration())
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeOCRFailed,
			"could not extract a page image for OCR", err).
			WithContext("strategy", "ocr")
	}

	var largest []byte
	for _, pageImages := range images {
		for _, img := range pageImages {
			raw, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			if len(raw) > len(largest) {
				largest = raw
			}
		}
	}
	if len(largest) == 0 {
		return nil, errors.NewExtractionError(errors.ErrCodeOCRFailed,
			"PDF contains neither text nor a recognizable page image", nil).
			WithContext("strategy", "ocr")
	}
	return largest, nil
}

var (
	pipeAsIRe    = regexp.MustCompile(`(^|\s)\|(\s|$)`)
	zeroInWordRe = regexp.MustCompile(`([A-Za-z])0([A-Za-z])`)
	oneInWordRe  = regexp.MustCompile(`([A-Za-z])1([A-Za-z])`)
	fiveInWordRe = regexp.MustCompile(`([A-Za-z])5([A-Za-z])`)
)

// correctOCRText fixes the most common tesseract misrecognitions: a lone
// pipe is almost always the letter I, and digits inside alphabetic words
// are letter confusions.
func correctOCRText(text string) string {
	text = pipeAsIRe.ReplaceAllString(text, "${1}I${2}")
	text = zeroInWordRe.ReplaceAllString(text, "${1}o${2}")
	text = oneInWordRe.ReplaceAllString(text, "${1}l${2}")
	text = fiveInWordRe.ReplaceAllString(text, "${1}s${2}")
	return text
}

// tesseractEngine is the production OCREngine backed by the tesseract C
// library via gosseract.
type tesseractEngine struct{}

func (tesseractEngine) Recognize(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}

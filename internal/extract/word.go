package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"resumelens/internal/errors"
)

var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

// extractWord pulls text from a .docx archive by flattening
// word/document.xml. Legacy binary .doc files are not a zip archive and
// fall back to a naive binary text salvage.
func extractWord(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return salvageLegacyDoc(data)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", errors.NewExtractionError(errors.ErrCodeCorruptFile,
					"Word document archive is damaged", err).
					WithContext("strategy", "word")
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", errors.NewExtractionError(errors.ErrCodeCorruptFile,
					"Word document archive is damaged", err).
					WithContext("strategy", "word")
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", errors.NewExtractionError(errors.ErrCodeCorruptFile,
			"Word document contains no document body", nil).
			WithContext("strategy", "word")
	}

	text := string(docXML)
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "<w:tab/>", "\t")
	text = xmlTagRe.ReplaceAllString(text, " ")

	if strings.TrimSpace(text) == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyContent,
			"Word document contains no readable text; it may hold only images", nil).
			WithContext("strategy", "word").
			WithContext("chars", 0)
	}
	return text, nil
}

// minSalvageRun is the shortest printable byte run kept during legacy
// .doc salvage; shorter runs are binary noise.
const minSalvageRun = 4

// salvageLegacyDoc scrapes readable text out of a legacy binary .doc
// file by keeping runs of printable characters. Crude, but the document
// body in the binary format is stored as plain character data, so real
// prose survives.
func salvageLegacyDoc(data []byte) (string, error) {
	var sb strings.Builder
	run := make([]byte, 0, 64)
	flush := func() {
		if len(run) >= minSalvageRun {
			sb.Write(run)
			sb.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, b := range data {
		if b >= 0x20 && b < 0x7F {
			run = append(run, b)
		} else {
			flush()
		}
	}
	flush()

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyContent,
			"could not salvage readable text from legacy .doc file; save as .docx and retry", nil).
			WithContext("strategy", "word").
			WithContext("chars", 0)
	}
	return text, nil
}

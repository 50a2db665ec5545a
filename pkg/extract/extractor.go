package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"resume-screening-backend/pkg/logger"
)

// minDirectTextChars is the threshold below which direct PDF extraction is
// considered to have failed (scanned document) and OCR takes over.
const minDirectTextChars = 100

// Magic byte signatures for the supported resume formats.
// Maps lowercase extension to the required content prefix.
var magicBytes = map[string][]byte{
	".pdf":  {0x25, 0x50, 0x44, 0x46},                         // %PDF
	".docx": {0x50, 0x4B},                                     // ZIP (PK..)
	".doc":  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, // OLE Compound Document
}

type pdfStrategy func(data []byte) (string, error)

// Extractor converts resume files into plain text. Extract never returns
// an error: extraction failures are an expected outcome and surface as an
// empty string for the caller to record.
type Extractor struct {
	ocr        OCREngine
	strategies []pdfStrategy
}

func NewExtractor(ocr OCREngine) *Extractor {
	return &Extractor{
		ocr:        ocr,
		strategies: []pdfStrategy{extractPDFNative, extractPDFPoppler},
	}
}

func (e *Extractor) Extract(data []byte, filename string) string {
	if !validateSignature(data, filename) {
		logger.Log.Warn("File failed content validation", "filename", filename)
		return ""
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.extractPDF(data)
	case ".docx":
		return extractWordDoc(data, docconv.ConvertDocx)
	case ".doc":
		return extractWordDoc(data, docconv.ConvertDoc)
	default:
		logger.Log.Warn("Unsupported file format", "filename", filename)
		return ""
	}
}

// validateSignature checks that the content's magic bytes match the claimed
// extension. Spoofed files fail closed.
func validateSignature(data []byte, filename string) bool {
	if len(data) < 8 {
		return false
	}
	sig, ok := magicBytes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return false
	}
	return bytes.HasPrefix(data, sig)
}

// extractPDF runs the direct strategies in order; when both together still
// yield fewer than minDirectTextChars non-whitespace characters the pages
// are rendered and OCRed instead, replacing the direct result entirely.
func (e *Extractor) extractPDF(data []byte) string {
	var text string
	for _, strategy := range e.strategies {
		out, err := runStrategy(strategy, data)
		if err != nil {
			logger.Log.Warn("PDF text extraction strategy failed", "error", err)
			continue
		}
		text = out
		if countNonWhitespace(text) >= minDirectTextChars {
			return strings.TrimSpace(text)
		}
	}

	if countNonWhitespace(text) < minDirectTextChars && e.ocr != nil {
		logger.Log.Info("Direct extraction yielded minimal content, attempting OCR")
		ocrText, err := e.ocr.Text(data)
		if err != nil {
			logger.Log.Error("OCR failed", "error", err)
			return strings.TrimSpace(text)
		}
		text = ocrText
	}

	return strings.TrimSpace(text)
}

// runStrategy isolates panics from PDF parser internals on malformed input.
func runStrategy(s pdfStrategy, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf strategy panic: %v", r)
		}
	}()
	return s(data)
}

func extractPDFNative(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractPDFPoppler(data []byte) (string, error) {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return body, nil
}

func extractWordDoc(data []byte, convert func(r io.Reader) (string, map[string]string, error)) string {
	body, _, err := convert(bytes.NewReader(data))
	if err != nil {
		logger.Log.Error("Word document extraction failed", "error", err)
		return ""
	}
	return strings.TrimSpace(body)
}

func countNonWhitespace(s string) int {
	n := 0
	for _, r := range s {
		if !isSpace(r) {
			n++
		}
	}
	return n
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

package extract

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"resume-screening-backend/pkg/logger"
)

// OCREngine renders a PDF and recognizes text on the resulting page images.
type OCREngine interface {
	Text(pdfData []byte) (string, error)
}

// TesseractOCR shells out to poppler's pdftoppm for rasterization and runs
// tesseract over each page via gosseract.
type TesseractOCR struct {
	lang        string
	popplerPath string
}

func NewTesseractOCR(lang, popplerPath string) *TesseractOCR {
	if lang == "" {
		lang = "eng"
	}
	return &TesseractOCR{lang: lang, popplerPath: popplerPath}
}

func (t *TesseractOCR) Text(pdfData []byte) (string, error) {
	dir, err := os.MkdirTemp("", "resume-ocr-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdfData, 0o600); err != nil {
		return "", fmt.Errorf("write temp pdf: %w", err)
	}

	pdftoppm := "pdftoppm"
	if t.popplerPath != "" {
		pdftoppm = filepath.Join(t.popplerPath, "pdftoppm")
	}
	cmd := exec.Command(pdftoppm, "-png", "-r", "300", input, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil || len(pages) == 0 {
		// single-digit page numbering on older poppler builds
		pages, _ = filepath.Glob(filepath.Join(dir, "page*.png"))
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(pages)

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.lang); err != nil {
		return "", fmt.Errorf("set ocr language: %w", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		if err := client.SetImage(page); err != nil {
			logger.Log.Warn("OCR could not load page image", "page", page, "error", err)
			continue
		}
		text, err := client.Text()
		if err != nil {
			logger.Log.Warn("OCR failed on page", "page", page, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Package extract converts document bytes into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

// ErrExtraction marks a failed document-to-text conversion
// (corrupt or unsupported input).
var ErrExtraction = errors.New("could not extract text from document")

// PDFExtractor extracts the text layer of PDF documents.
type PDFExtractor struct {
	logger logger.Logger
}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor(log logger.Logger) *PDFExtractor {
	return &PDFExtractor{logger: log}
}

// ExtractText reads the file at path and returns its plain text.
func (e *PDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return e.ExtractTextFromBytes(ctx, data)
}

// ExtractTextFromBytes returns the plain text of a PDF held in memory.
func (e *PDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdf parser panicked", logger.Any("cause", r))
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	numPages := pdfReader.NumPage()
	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document has no extractable text layer", ErrExtraction)
	}

	e.logger.Debug("extracted pdf text",
		logger.Int("pages", numPages),
		logger.Int("chars", len(text)),
	)
	return text, nil
}

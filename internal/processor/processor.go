// Package processor defines the document processing contract shared by
// every feature of the platform. A processor runs a fixed four-stage
// lifecycle: validate input, preprocess it into plain text, make exactly
// one AI backend call, and postprocess the raw output into a Result.
package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DovudAsadov/ai-hr-platform/internal/llm"
)

// ErrInvalidInput marks empty or unsupported processor input.
var ErrInvalidInput = errors.New("input is empty or unsupported")

// maxInputChars is the normalized-input budget sent to a backend,
// a rough 4-chars-per-token estimate against provider context limits.
const maxInputChars = 24000

// Document is one processing input: raw text, a PDF path, or PDF bytes.
// It has no identity beyond the call that uses it.
type Document struct {
	Text string
	Path string
	Data []byte
}

// TextDocument wraps raw text as a Document.
func TextDocument(text string) Document { return Document{Text: text} }

// FileDocument wraps a PDF file path as a Document.
func FileDocument(path string) Document { return Document{Path: path} }

// BytesDocument wraps in-memory PDF bytes as a Document.
func BytesDocument(data []byte) Document { return Document{Data: data} }

// Extractor converts document bytes or files into plain text. It is an
// external collaborator; the contract only requires that unreadable input
// fails with an error.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
	ExtractTextFromBytes(ctx context.Context, data []byte) (string, error)
}

// Processor is the capability interface each document feature implements.
// The Process function drives the stages in fixed order.
type Processor interface {
	// Name identifies the processor in logs.
	Name() string
	// PayloadKey names the field successful results publish.
	PayloadKey() string
	// ValidateInput rejects empty or unsupported input. Runs before any
	// external call.
	ValidateInput(doc Document) error
	// Preprocess normalizes the input into plain text: extraction for
	// documents, whitespace normalization, truncation to the backend budget.
	Preprocess(ctx context.Context, doc Document) (string, error)
	// BuildPrompt turns normalized text into the backend request.
	BuildPrompt(text string) llm.Request
	// Postprocess shapes the raw backend output.
	Postprocess(raw string) string
}

// Process runs the full lifecycle. It never returns an error for
// recoverable failures: invalid input, extraction failures, and backend
// failures all surface as a failed Result, so adapters have one uniform
// path for user-facing errors. One outbound backend call per invocation,
// no other side effects.
func Process(ctx context.Context, p Processor, backend llm.Client, doc Document) Result {
	if err := p.ValidateInput(doc); err != nil {
		return Failedf("invalid input: %v", err)
	}

	text, err := p.Preprocess(ctx, doc)
	if err != nil {
		return Failedf("preprocessing failed: %v", err)
	}

	raw, err := backend.Complete(ctx, p.BuildPrompt(text))
	if err != nil {
		return Failedf("%s backend call failed: %v", backend.Provider(), err)
	}

	return Success(p.PayloadKey(), p.Postprocess(raw))
}

// base carries the stages shared by the concrete processors.
type base struct {
	extractor Extractor
}

func (b base) ValidateInput(doc Document) error {
	switch {
	case doc.Path != "":
		if strings.ToLower(filepath.Ext(doc.Path)) != ".pdf" {
			return fmt.Errorf("%w: only pdf files are supported, got %q", ErrInvalidInput, filepath.Ext(doc.Path))
		}
		return nil
	case len(doc.Data) > 0:
		return nil
	case strings.TrimSpace(doc.Text) != "":
		return nil
	default:
		return ErrInvalidInput
	}
}

func (b base) Preprocess(ctx context.Context, doc Document) (string, error) {
	var text string
	switch {
	case doc.Path != "":
		if b.extractor == nil {
			return "", fmt.Errorf("no extractor configured for document input")
		}
		extracted, err := b.extractor.ExtractText(ctx, doc.Path)
		if err != nil {
			return "", err
		}
		text = extracted
	case len(doc.Data) > 0:
		if b.extractor == nil {
			return "", fmt.Errorf("no extractor configured for document input")
		}
		extracted, err := b.extractor.ExtractTextFromBytes(ctx, doc.Data)
		if err != nil {
			return "", err
		}
		text = extracted
	default:
		text = doc.Text
	}

	text = normalizeWhitespace(text)
	if text == "" {
		return "", ErrInvalidInput
	}
	return truncate(text, maxInputChars), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

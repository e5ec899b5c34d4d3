//go:build !tesseract

package ocr

import (
	"context"
	"image"
)

// NewEngine returns the stub engine. Build with -tags tesseract for the
// real Tesseract-backed implementation.
func NewEngine(Config) (Engine, error) {
	return &noBackendEngine{}, nil
}

// BackendAvailable reports whether a real OCR backend was compiled in.
func BackendAvailable() bool { return false }

type noBackendEngine struct{}

func (*noBackendEngine) Tokens(context.Context, image.Image) ([]Token, error) {
	return nil, ErrNoBackend
}

func (*noBackendEngine) PlainText(context.Context, image.Image) (string, error) {
	return "", ErrNoBackend
}

func (*noBackendEngine) Close() error { return nil }

// Package ocr defines the character recognition seam of the pipeline. The
// concrete engine (Tesseract via gosseract) is cgo-backed and compiled in
// only under the "tesseract" build tag; default builds get a stub so the
// rest of the pipeline stays testable without the native library.
package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrNoBackend is returned by the stub engine compiled without an OCR backend.
var ErrNoBackend = errors.New("no OCR backend compiled in (build with -tags tesseract)")

// Token is one recognized word with its bounding box and the engine's
// confidence on a 0-100 scale.
type Token struct {
	Text       string          `json:"text"`
	Box        image.Rectangle `json:"box"`
	Confidence float64         `json:"confidence"`
}

// Engine recognizes text in page images.
type Engine interface {
	// Tokens returns word-level results for the image. Implementations
	// drop empty tokens and tokens with confidence <= 0 before returning.
	Tokens(ctx context.Context, img image.Image) ([]Token, error)

	// PlainText returns the recognized text of the image as a single string.
	PlainText(ctx context.Context, img image.Image) (string, error)

	// Close releases engine resources.
	Close() error
}

// FilterTokens removes empty and non-positive-confidence tokens in place
// order, returning the kept slice.
func FilterTokens(tokens []Token) []Token {
	kept := tokens[:0]
	for _, t := range tokens {
		if t.Text == "" || t.Confidence <= 0 {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// MeanConfidence averages token confidences on the 0-100 scale. Empty input
// yields 0.
func MeanConfidence(tokens []Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tokens {
		sum += t.Confidence
	}
	return sum / float64(len(tokens))
}

// TokensInRegion returns the tokens whose box centers fall inside r.
func TokensInRegion(tokens []Token, r image.Rectangle) []Token {
	var out []Token
	for _, t := range tokens {
		cx := (t.Box.Min.X + t.Box.Max.X) / 2
		cy := (t.Box.Min.Y + t.Box.Max.Y) / 2
		if image.Pt(cx, cy).In(r) {
			out = append(out, t)
		}
	}
	return out
}

//go:build tesseract

package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// NewEngine returns a Tesseract-backed engine.
func NewEngine(cfg Config) (Engine, error) {
	client := gosseract.NewClient()
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	if err := client.SetLanguage(langs...); err != nil {
		_ = client.Close()
		return nil, err
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	psm := cfg.PageSegMode
	if psm == 0 {
		psm = int(gosseract.PSM_SINGLE_BLOCK)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &tesseractEngine{client: client}, nil
}

// BackendAvailable reports whether a real OCR backend was compiled in.
func BackendAvailable() bool { return true }

// tesseractEngine serializes access to the gosseract client, which is not
// safe for concurrent use.
type tesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func (e *tesseractEngine) Tokens(ctx context.Context, img image.Image) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setImage(img); err != nil {
		return nil, err
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		tokens = append(tokens, Token{
			Text:       strings.TrimSpace(b.Word),
			Box:        b.Box,
			Confidence: b.Confidence,
		})
	}
	return FilterTokens(tokens), nil
}

func (e *tesseractEngine) PlainText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.setImage(img); err != nil {
		return "", err
	}
	text, err := e.client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *tesseractEngine) setImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return e.client.SetImageFromBytes(buf.Bytes())
}

func (e *tesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

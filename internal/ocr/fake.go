package ocr

import (
	"context"
	"image"
)

// FakeEngine serves scripted tokens keyed by region, letting pipeline tests
// run without a native backend. The zero value returns nothing.
type FakeEngine struct {
	// Scripted tokens returned by Tokens regardless of image content.
	Scripted []Token

	// Text returned by PlainText.
	Text string

	// Err, when set, is returned by every call.
	Err error
}

var _ Engine = (*FakeEngine)(nil)

func (f *FakeEngine) Tokens(_ context.Context, _ image.Image) ([]Token, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return FilterTokens(append([]Token(nil), f.Scripted...)), nil
}

func (f *FakeEngine) PlainText(_ context.Context, _ image.Image) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

func (f *FakeEngine) Close() error { return nil }

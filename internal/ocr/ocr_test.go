package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTokens(t *testing.T) {
	in := []Token{
		{Text: "50.5", Confidence: 91},
		{Text: "", Confidence: 80},
		{Text: "Petrol", Confidence: 0},
		{Text: "N-1", Confidence: -3},
		{Text: "Diesel", Confidence: 64},
	}
	out := FilterTokens(in)
	require.Len(t, out, 2)
	assert.Equal(t, "50.5", out[0].Text)
	assert.Equal(t, "Diesel", out[1].Text)
}

func TestMeanConfidence(t *testing.T) {
	assert.Equal(t, 0.0, MeanConfidence(nil))
	tokens := []Token{{Confidence: 80}, {Confidence: 90}, {Confidence: 70}}
	assert.InDelta(t, 80.0, MeanConfidence(tokens), 1e-9)
}

func TestTokensInRegion(t *testing.T) {
	tokens := []Token{
		{Text: "inside", Box: image.Rect(10, 10, 30, 20)},
		{Text: "outside", Box: image.Rect(100, 100, 140, 120)},
		// Box straddles the boundary but its center is inside.
		{Text: "straddle", Box: image.Rect(35, 10, 60, 20)},
	}
	got := TokensInRegion(tokens, image.Rect(0, 0, 50, 50))
	require.Len(t, got, 2)
	assert.Equal(t, "inside", got[0].Text)
	assert.Equal(t, "straddle", got[1].Text)
}

func TestFakeEngineScripted(t *testing.T) {
	f := &FakeEngine{
		Scripted: []Token{
			{Text: "50", Confidence: 90},
			{Text: "", Confidence: 90}, // dropped like the real engine would
		},
		Text: "Nozzle Fuel Liters",
	}
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	tokens, err := f.Tokens(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "50", tokens[0].Text)

	text, err := f.PlainText(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, "Nozzle Fuel Liters", text)
	assert.NoError(t, f.Close())
}

func TestFakeEngineError(t *testing.T) {
	scripted := errors.New("scripted failure")
	f := &FakeEngine{Err: scripted}
	img := image.NewGray(image.Rect(0, 0, 10, 10))

	_, err := f.Tokens(context.Background(), img)
	assert.ErrorIs(t, err, scripted)
	_, err = f.PlainText(context.Background(), img)
	assert.ErrorIs(t, err, scripted)
}

func TestStubEngineWithoutBackend(t *testing.T) {
	if BackendAvailable() {
		t.Skip("real OCR backend compiled in")
	}
	engine, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	defer engine.Close()

	img := image.NewGray(image.Rect(0, 0, 10, 10))
	_, err = engine.Tokens(context.Background(), img)
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = engine.PlainText(context.Background(), img)
	assert.ErrorIs(t, err, ErrNoBackend)
}

// Package testutil builds synthetic ledger imagery and fixture data for the
// pipeline tests.
package testutil

import (
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/petropage/ledgerocr/internal/ledger"
)

// GridImage draws a white page ruled into cols x rows by 2px black lines,
// the synthetic stand-in for a photographed ledger table.
func GridImage(width, height, cols, rows int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	for c := 0; c <= cols; c++ {
		x := c * (width - 1) / cols
		drawVLine(img, x, 0, height)
		drawVLine(img, min(x+1, width-1), 0, height)
	}
	for r := 0; r <= rows; r++ {
		y := r * (height - 1) / rows
		drawHLine(img, y, 0, width)
		drawHLine(img, min(y+1, height-1), 0, width)
	}
	return img
}

// BlankImage is a uniformly white page with no table at all.
func BlankImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// DiagonalStrokeImage draws a thick dark stroke from the top-left toward the
// bottom-right region, giving the deskew estimator something tilted to
// measure.
func DiagonalStrokeImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for x := width / 4; x < 3*width/4; x++ {
		y := height/4 + (x-width/4)/8
		for dy := 0; dy < 4 && y+dy < height; dy++ {
			img.SetGray(x, y+dy, color.Gray{Y: 0})
		}
	}
	return img
}

func drawVLine(img *image.NRGBA, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		img.SetNRGBA(x, y, color.NRGBA{A: 255})
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int) {
	for x := x0; x < x1; x++ {
		img.SetNRGBA(x, y, color.NRGBA{A: 255})
	}
}

// Entry builds a fully populated sales entry for fixtures. Callers override
// fields as needed.
func Entry(fuel string, liters, rate, amount float64) ledger.SalesEntry {
	return ledger.SalesEntry{
		ID:            uuid.New(),
		LedgerPageID:  uuid.New(),
		NozzleID:      "N-1",
		FuelType:      fuel,
		LitersSold:    F(liters),
		RatePerLiter:  F(rate),
		TotalAmount:   F(amount),
		OCRConfidence: 0.9,
	}
}

// F returns a pointer to v, for the entry's optional numeric fields.
func F(v float64) *float64 { return &v }

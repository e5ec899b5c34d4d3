package ocr

// Config selects the recognition language and page segmentation behavior.
type Config struct {
	// Languages in Tesseract notation, e.g. "eng" or "eng+urd".
	Languages []string

	// Whitelist restricts recognized characters when non-empty. Numeric
	// columns benefit from "0123456789.-/".
	Whitelist string

	// PageSegMode follows Tesseract PSM numbering. 6 (single uniform
	// block) suits cropped table cells.
	PageSegMode int
}

// DefaultConfig recognizes English with cell-oriented segmentation.
func DefaultConfig() Config {
	return Config{
		Languages:   []string{"eng"},
		PageSegMode: 6,
	}
}

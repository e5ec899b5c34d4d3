package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus is the lifecycle state of a ledger page.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Valid reports whether s is one of the defined statuses.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo enforces the page state machine:
// pending → processing → {completed | failed}, failed → pending via retry.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	case StatusFailed:
		return next == StatusPending
	}
	return false
}

// LedgerPage is one uploaded photograph of a handwritten sales sheet together
// with its processing bookkeeping.
type LedgerPage struct {
	ID               uuid.UUID        `json:"id"`
	OriginalImageURL string           `json:"original_image_url"`
	Status           ProcessingStatus `json:"processing_status"`
	ProcessingErrors string           `json:"processing_errors,omitempty"`
	ConfidenceScore  float64          `json:"ocr_confidence_score"`
	DetectedColumns  string           `json:"detected_columns,omitempty"`
	ExtractedData    string           `json:"extracted_data,omitempty"`
	UploadedAt       time.Time        `json:"uploaded_at"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
}

// NewLedgerPage creates a page in the pending state for an uploaded image.
func NewLedgerPage(imageURL string) *LedgerPage {
	return &LedgerPage{
		ID:               uuid.New(),
		OriginalImageURL: imageURL,
		Status:           StatusPending,
		UploadedAt:       time.Now().UTC(),
	}
}

// Transition moves the page to the next status, rejecting transitions the
// state machine does not permit.
func (p *LedgerPage) Transition(next ProcessingStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return fmt.Errorf("ledger page %s: invalid transition %s -> %s", p.ID, p.Status, next)
	}
	p.Status = next
	return nil
}

// AppendNote adds a processing note, separating from prior notes if present.
func (p *LedgerPage) AppendNote(note string) {
	if p.ProcessingErrors != "" {
		p.ProcessingErrors += "; " + note
		return
	}
	p.ProcessingErrors = note
}

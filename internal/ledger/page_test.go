package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStateMachine(t *testing.T) {
	allowed := []struct {
		from, to ProcessingStatus
	}{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusPending},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct {
		from, to ProcessingStatus
	}{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusProcessing},
		{StatusFailed, StatusProcessing},
		{StatusFailed, StatusCompleted},
	}
	for _, tt := range denied {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPageTransition(t *testing.T) {
	p := NewLedgerPage("uploads/page1.jpg")
	assert.Equal(t, StatusPending, p.Status)
	assert.False(t, p.UploadedAt.IsZero())

	require.NoError(t, p.Transition(StatusProcessing))
	require.NoError(t, p.Transition(StatusFailed))
	require.NoError(t, p.Transition(StatusPending))

	err := p.Transition(StatusCompleted)
	require.Error(t, err)
	assert.Equal(t, StatusPending, p.Status)
}

func TestAppendNote(t *testing.T) {
	p := NewLedgerPage("x.png")
	p.AppendNote("first")
	p.AppendNote("second")
	assert.Equal(t, "first; second", p.ProcessingErrors)
}

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusKind(t *testing.T) {
	cases := map[Status]StatusKind{
		"":                   StatusNew,
		"New":                StatusNew,
		"accepted":           StatusAccepted,
		" ACCEPTED ":         StatusAccepted,
		"Follow Up":          StatusFollowUp,
		"follow-up":          StatusFollowUp,
		"follow_up":          StatusFollowUp,
		"FollowUp":           StatusFollowUp,
		"Reject":             StatusRejected,
		"CFA Sent":           StatusCFASent,
		"more info required": StatusMoreInfoRequired,
		"Hotkey Request":     StatusHotkeyRequest,
		"hotkeyed":           StatusHotkeyed,
		"Hotkey":             StatusCustom,
		"Waiting on bank":    StatusCustom,
	}
	for in, want := range cases {
		assert.Equal(t, want, in.Kind(), "status %q", in)
	}
}

func TestStatusCanonical(t *testing.T) {
	assert.Equal(t, "Follow Up", Status("follow-up").Canonical())
	assert.Equal(t, "New", Status("").Canonical())
	assert.Equal(t, "Waiting on bank", Status("  Waiting on bank ").Canonical())
}

func TestStatusOrDefault(t *testing.T) {
	assert.Equal(t, DefaultStatus, Status("   ").OrDefault())
	assert.Equal(t, Status("Open"), Status("Open").OrDefault())
}

func TestStatusOptions(t *testing.T) {
	opts := StatusOptions()

	assert.Equal(t, "New", opts[0])
	assert.Contains(t, opts, "Hotkey Request")
	assert.Contains(t, opts, "No Answer")
	seen := map[string]bool{}
	for _, o := range opts {
		assert.False(t, seen[o], "duplicate option %q", o)
		seen[o] = true
	}
}

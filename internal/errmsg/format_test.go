package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	err := errors.New("index 5 out of range (max 3)")

	got := Format(OpQueueMove, err)

	want := "Failed to move queue item: index 5 out of range (max 3)"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_NilError(t *testing.T) {
	if got := Format(OpQueueMove, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestFormatWith(t *testing.T) {
	err := errors.New("catalog unreachable")

	got := FormatWith(OpContextFetch, "Gym Mix", err)

	want := "Failed to fetch more from context 'Gym Mix': catalog unreachable"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}
}

func TestFormatWith_EmptyContext(t *testing.T) {
	err := errors.New("nope")

	got := FormatWith(OpQueueSave, "", err)

	if got != Format(OpQueueSave, err) {
		t.Errorf("FormatWith(empty) = %q, want plain Format", got)
	}
}

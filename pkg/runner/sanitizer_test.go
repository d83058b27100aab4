package runner_test

import (
	"strings"
	"testing"

	"github.com/aretw0/choicefsm/pkg/runner"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeEvent_SizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		inputSize int
		limit     int
		wantErr   bool
	}{
		{"Under Default", runner.DefaultMaxEventSize - 1, 0, false},
		{"Exact Default", runner.DefaultMaxEventSize, 0, false},
		{"Over Default", runner.DefaultMaxEventSize + 1, 0, true},
		{"Custom Limit", 9, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.SanitizeEvent(strings.Repeat("a", tt.inputSize), tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, runner.ErrEventTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeEvent_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "coin", "coin"},
		{"Surrounding Space", "  coin\r\n", "coin"},
		{"ANSI Code", "\x1b[31mcoin\x1b[0m", "[31mcoin[0m"},
		{"Null Byte", "co\x00in", "coin"},
		{"Inner Tab", "co\tin", "coin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runner.SanitizeEvent(tt.input, 0)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeEvent_Rejects(t *testing.T) {
	_, err := runner.SanitizeEvent("\xff\xfe", 0)
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)

	_, err = runner.SanitizeEvent(" \x07 ", 0)
	assert.ErrorIs(t, err, runner.ErrEmptyEvent)
}

package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSRT(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:02,000
never gonna give you up

2
00:00:02,000 --> 00:00:04,000
never gonna let you down
second line

3
00:00:04,000 --> 00:00:06,000

`
	lines := parseSRT(srt)
	assert.Equal(t, []string{
		"never gonna give you up",
		"never gonna let you down",
		"second line",
	}, lines)
}

func TestParseSRTEmpty(t *testing.T) {
	assert.Empty(t, parseSRT(""))
}

func TestRemoveDuplicateLines(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "consecutive repeats collapsed",
			input: []string{"hello world", "hello world", "goodbye"},
			want:  []string{"hello world", "goodbye"},
		},
		{
			name:  "scrolling cue containment",
			input: []string{"never gonna", "never gonna give you up", "something else"},
			want:  []string{"never gonna", "something else"},
		},
		{
			name:  "non-consecutive repeats kept",
			input: []string{"a line", "other", "a line"},
			want:  []string{"a line", "other", "a line"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeDuplicateLines(tt.input))
		})
	}
}

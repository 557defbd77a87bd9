package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadTime(t *testing.T) {
	tests := []struct {
		name           string
		rawContent     string
		wordsPerMinute int
		want           int
	}{
		{
			name:           "400 words at 200 wpm",
			rawContent:     strings.Repeat("word ", 400),
			wordsPerMinute: 200,
			want:           2,
		},
		{
			name:           "partial minute rounds up",
			rawContent:     strings.Repeat("word ", 201),
			wordsPerMinute: 200,
			want:           2,
		},
		{
			name:           "single word",
			rawContent:     "hi",
			wordsPerMinute: 200,
			want:           1,
		},
		{
			name:           "empty content",
			rawContent:     "",
			wordsPerMinute: 200,
			want:           0,
		},
		{
			name:           "whitespace only",
			rawContent:     "  \n\t ",
			wordsPerMinute: 200,
			want:           0,
		},
		{
			name:           "zero wpm falls back to default",
			rawContent:     strings.Repeat("word ", DefaultWordsPerMinute),
			wordsPerMinute: 0,
			want:           1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadTime(tt.rawContent, tt.wordsPerMinute))
		})
	}
}

package render

import "strings"

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 200

// ReadTime estimates reading minutes for raw markup, rounding up. Words
// are counted by whitespace-splitting the raw content rather than the
// rendered HTML so tag text is never counted as prose.
func ReadTime(rawContent string, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(rawContent))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

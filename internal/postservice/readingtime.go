package postservice

import "strings"

const wordsPerMinute = 200

// ReadingTime is the estimated minutes to read the content: the whitespace
// separated word count divided by 200, rounded up. Blank content reads in 0.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}

	return (words + wordsPerMinute - 1) / wordsPerMinute
}

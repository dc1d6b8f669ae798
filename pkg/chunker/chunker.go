package chunker

import "errors"

// ErrEmptyInput is returned when there is no text to split.
var ErrEmptyInput = errors.New("chunker: empty input text")

// DefaultChunkSize matches the corpus layout the retrieval side expects.
const DefaultChunkSize = 500

// Split cuts text into consecutive, non-overlapping chunks of at most
// chunkSize runes, preserving the original order. The final chunk may be
// shorter. Concatenating the result reproduces the input exactly.
func Split(text string, chunkSize int) ([]string, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(text)
	totalLen := len(runes)

	chunks := make([]string, 0, (totalLen+chunkSize-1)/chunkSize)
	for i := 0; i < totalLen; i += chunkSize {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}
		chunks = append(chunks, string(runes[i:end]))
	}

	return chunks, nil
}

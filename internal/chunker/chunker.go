package chunker

import (
	"errors"
	"fmt"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// ErrInvalidConfig is returned by Validate for parameters Split cannot honor.
var ErrInvalidConfig = errors.New("invalid chunk config")

// Config controls chunking behavior. Sizes are in characters (code points).
type Config struct {
	ChunkSize int // Target maximum chunk length.
	Overlap   int // Trailing characters of a chunk repeated at the start of the next.
}

// DefaultConfig returns the default 1000/200 split.
func DefaultConfig() Config {
	return Config{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
	}
}

// Validate requires 0 <= Overlap < ChunkSize.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, c.Overlap, c.ChunkSize)
	}
	return nil
}

// Split applies the config. See the package-level Split.
func (c Config) Split(text string) []string {
	return Split(text, c.ChunkSize, c.Overlap)
}

// Split breaks text into chunks of at most chunkSize characters, each
// starting overlap characters before the previous one ended. A full-size
// chunk that does not reach the end of the text is shortened to end just
// after the last boundary character in its second half, if there is one.
//
// The chunk that reaches the end of the text is the last one. Split always
// terminates: a non-positive chunkSize yields no chunks and the cursor is
// never allowed to stand still.
func Split(text string, chunkSize, overlap int) []string {
	if text == "" || chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	start := 0
	for start < n {
		end := min(start+chunkSize, n)
		if end < n && end-start == chunkSize {
			end = breakPoint(runes, start, end, chunkSize)
		}

		chunks = append(chunks, string(runes[start:end]))
		if end >= n {
			break
		}

		next := end
		if end-overlap > start {
			next = end - overlap
		}
		if next <= start {
			break
		}
		start = next
	}

	return chunks
}

// breakPoint scans backward from end toward the middle of the window for a
// boundary character and returns the index just past it, or end if none.
func breakPoint(runes []rune, start, end, chunkSize int) int {
	floor := start + chunkSize/2
	for i := end - 1; i > floor; i-- {
		if isBoundary(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isBoundary(r rune) bool {
	switch r {
	case '.', ',', '\n', ' ':
		return true
	}
	return false
}

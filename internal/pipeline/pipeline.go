package pipeline

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/parser"
)

// Process extracts pages from data and splits each page into chunks.
//
// Chunk indexes are assigned across the whole document in emission order:
// every chunk of page 1 precedes every chunk of page 2. Chunks that are
// blank after trimming are dropped without consuming an index. Extraction
// errors are returned unchanged, so errors.Is(err,
// parser.ErrMalformedDocument) holds for unparseable input.
func Process(data []byte, ft document.FileType, cfg chunker.Config) ([]document.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pages, err := parser.Extract(data, ft)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ft, err)
	}

	chunks := []document.Chunk{}
	index := 0
	for _, page := range pages {
		for _, text := range cfg.Split(page.Text) {
			if strings.TrimSpace(text) == "" {
				continue
			}
			chunks = append(chunks, document.Chunk{
				PageNumber: page.Number,
				Text:       text,
				Index:      index,
			})
			index++
		}
	}

	return chunks, nil
}

// Result is the outcome of one pipeline run: either the chunks, or the
// reason none could be produced.
type Result struct {
	Chunks []document.Chunk
	Err    error
}

// Run is Process with the outcome folded into a Result.
func Run(data []byte, ft document.FileType, cfg chunker.Config) Result {
	chunks, err := Process(data, ft, cfg)
	return Result{Chunks: chunks, Err: err}
}

// Failed reports whether the run produced no usable chunk sequence.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Reason describes the failure, or "" for a successful run.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

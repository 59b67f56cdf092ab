// Package store persists documents and their chunks.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/uptrace/bun"
)

const DefaultChunkLimit = 100

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Document is an uploaded file's record.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`
	FilePath    string    `bun:"file_path,notnull" json:"file_path"`
	FileType    string    `bun:"file_type,notnull" json:"file_type"`
	FileSize    int64     `bun:"file_size,notnull" json:"file_size"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	ContentHash string    `bun:"content_hash" json:"content_hash"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at,omitzero"`
}

// DocumentChunk is a persisted chunk of a document.
type DocumentChunk struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	DocumentID int64  `bun:"document_id,notnull" json:"document_id"`
	ChunkID    string `bun:"chunk_id,notnull,unique" json:"chunk_id"`
	Content    string `bun:"content,notnull" json:"content"`
	PageNumber int    `bun:"page_number" json:"page_number"`
	ChunkIndex int    `bun:"chunk_index,notnull" json:"chunk_index"`
	VectorID   string `bun:"vector_id,nullzero" json:"vector_id,omitempty"`
}

// Repository is the persistence boundary used by the ingest service and
// the HTTP API.
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id int64) (*Document, error)
	ListDocuments(ctx context.Context, userID string) ([]Document, error)
	// DeleteDocument removes a document and its chunks, returning how many
	// chunks were removed.
	DeleteDocument(ctx context.Context, id int64) (int, error)

	// SaveChunks stores chunks under documentID, chunks[i] with the
	// caller-generated unique ids[i]. Either every chunk is stored or none.
	SaveChunks(ctx context.Context, documentID int64, chunks []document.Chunk, ids []string) error
	ListChunks(ctx context.Context, documentID int64, skip, limit int) ([]DocumentChunk, error)
	SearchChunks(ctx context.Context, documentID int64, query string, limit int) ([]DocumentChunk, error)
}

func newChunkRecords(documentID int64, chunks []document.Chunk, ids []string) ([]DocumentChunk, error) {
	if len(ids) != len(chunks) {
		return nil, fmt.Errorf("save chunks: %d ids for %d chunks", len(ids), len(chunks))
	}
	recs := make([]DocumentChunk, len(chunks))
	for i, c := range chunks {
		recs[i] = DocumentChunk{
			DocumentID: documentID,
			ChunkID:    ids[i],
			Content:    c.Text,
			PageNumber: c.PageNumber,
			ChunkIndex: c.Index,
		}
	}
	return recs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultChunkLimit
	}
	return limit
}

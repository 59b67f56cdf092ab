// Package ingest stores uploaded documents and their chunks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/pipeline"
	"github.com/dgallion1/writingstuff/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidUpload is returned for uploads rejected before anything is stored.
var ErrInvalidUpload = errors.New("invalid upload")

// FileSaver persists the raw upload and returns where it was written.
// Remove discards a saved file when the upload cannot be recorded.
type FileSaver interface {
	Save(userID, filename string, data []byte) (string, error)
	Remove(path string) error
}

// Upload is one file submitted for ingestion.
type Upload struct {
	UserID      string
	Filename    string
	Title       string // defaults to Filename
	Description string
	FileType    document.FileType // defaults to the filename extension
	Data        []byte
	Chunking    chunker.Config
}

// Report describes the stored document. ExtractionError is set when the
// document was stored but no chunks could be produced from it.
type Report struct {
	Document        *store.Document `json:"document"`
	ChunkCount      int             `json:"chunk_count"`
	ExtractionError string          `json:"extraction_error,omitempty"`
}

// BatchItem is the outcome of one upload in a batch.
type BatchItem struct {
	Filename string  `json:"filename"`
	Report   *Report `json:"report,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Service runs uploads through the file store, the pipeline and the repository.
type Service struct {
	repo          store.Repository
	files         FileSaver
	stats         *Stats
	log           *slog.Logger
	maxConcurrent int
	newChunkID    func() string
}

func NewService(repo store.Repository, files FileSaver, stats *Stats, log *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	return &Service{
		repo:          repo,
		files:         files,
		stats:         stats,
		log:           log,
		maxConcurrent: maxConcurrent,
		newChunkID:    uuid.NewString,
	}
}

// Stats returns the service's run statistics.
func (s *Service) Stats() *Stats {
	return s.stats
}

// Ingest stores one upload. A document that cannot be parsed is still
// recorded and reported with ExtractionError; only storage failures and
// rejected uploads return an error.
func (s *Service) Ingest(ctx context.Context, up Upload) (*Report, error) {
	if up.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidUpload)
	}
	if up.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidUpload)
	}
	if err := up.Chunking.Validate(); err != nil {
		return nil, err
	}
	ft := up.FileType
	if ft == "" {
		ft = document.ParseFileType(up.Filename)
	}
	title := up.Title
	if title == "" {
		title = up.Filename
	}

	log := s.log.With("user_id", up.UserID, "filename", up.Filename, "file_type", ft)

	path, err := s.files.Save(up.UserID, up.Filename, up.Data)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	doc := &store.Document{
		Title:       title,
		Description: up.Description,
		FilePath:    path,
		FileType:    ft.String(),
		FileSize:    int64(len(up.Data)),
		UserID:      up.UserID,
		ContentHash: pipeline.ContentHashHex(up.Data),
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		s.discardFile(log, path)
		return nil, err
	}
	log = log.With("document_id", doc.ID)

	start := time.Now()
	res := pipeline.Run(up.Data, ft, up.Chunking)
	elapsed := time.Since(start)
	s.stats.Record(elapsed, len(res.Chunks), res.Failed())

	report := &Report{Document: doc}
	if res.Failed() {
		log.Warn("extraction failed", "error", res.Err)
		report.ExtractionError = res.Reason()
		return report, nil
	}

	ids := make([]string, len(res.Chunks))
	for i := range ids {
		ids[i] = s.newChunkID()
	}
	if err := s.repo.SaveChunks(ctx, doc.ID, res.Chunks, ids); err != nil {
		if _, derr := s.repo.DeleteDocument(ctx, doc.ID); derr != nil {
			log.Error("remove partially ingested document", "error", derr)
		}
		s.discardFile(log, path)
		return nil, err
	}
	report.ChunkCount = len(res.Chunks)

	log.Info("document ingested", "chunks", report.ChunkCount, "duration_ms", elapsed.Milliseconds())
	return report, nil
}

func (s *Service) discardFile(log *slog.Logger, path string) {
	if err := s.files.Remove(path); err != nil {
		log.Error("remove upload", "path", path, "error", err)
	}
}

// IngestBatch ingests uploads concurrently. Items are returned in input
// order and a failed upload does not stop the others.
func (s *Service) IngestBatch(ctx context.Context, uploads []Upload) []BatchItem {
	items := make([]BatchItem, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, up := range uploads {
		items[i].Filename = up.Filename
		g.Go(func() error {
			report, err := s.Ingest(ctx, up)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Report = report
			return nil
		})
	}
	_ = g.Wait()

	return items
}

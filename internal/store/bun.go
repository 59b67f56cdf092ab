package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"modernc.org/sqlite"
)

// sqliteLower is registered on every SQLite connection. The built-in
// LOWER only folds ASCII.
const sqliteLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching query literally anywhere.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// BunStore is a Repository backed by PostgreSQL or SQLite through bun.
type BunStore struct {
	db    *bun.DB
	lower string // SQL function folding case for SearchChunks
}

var _ Repository = (*BunStore)(nil)

// Open connects to the database named by dsn. "postgres://" and
// "postgresql://" URLs use the pg driver; "sqlite:<path>" uses SQLite.
func Open(ctx context.Context, dsn string, debug bool) (*BunStore, error) {
	db, lower, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &BunStore{db: db, lower: lower}, nil
}

func openDB(dsn string) (*bun.DB, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqldb, pgdialect.New()), "LOWER", nil
	case strings.HasPrefix(dsn, "sqlite:"):
		sqldb, err := sql.Open("sqlite", strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows a single writer; in-memory databases also vanish
		// with their last connection.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), sqliteLower, nil
	default:
		return nil, "", fmt.Errorf("unsupported database url %q", dsn)
	}
}

// Migrate creates the tables if they do not exist yet.
func (s *BunStore) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	_, err := s.db.NewCreateTable().
		Model((*DocumentChunk)(nil)).
		IfNotExists().
		ForeignKey(`("document_id") REFERENCES "documents" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create document_chunks table: %w", err)
	}
	_, err = s.db.NewCreateIndex().
		Model((*DocumentChunk)(nil)).
		Index("document_chunks_document_id_idx").
		Column("document_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create document_chunks index: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(doc).Exec(ctx); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *BunStore) GetDocument(ctx context.Context, id int64) (*Document, error) {
	doc := new(Document)
	err := s.db.NewSelect().Model(doc).Where("d.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %d: %w", id, err)
	}
	return doc, nil
}

func (s *BunStore) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	var docs []Document
	q := s.db.NewSelect().Model(&docs).Order("d.id ASC")
	if userID != "" {
		q = q.Where("d.user_id = ?", userID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *BunStore) DeleteDocument(ctx context.Context, id int64) (int, error) {
	var removed int
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*DocumentChunk)(nil)).
			Where("document_id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		n, _ := res.RowsAffected()
		removed = int(n)

		res, err = tx.NewDelete().
			Model((*Document)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *BunStore) SaveChunks(ctx context.Context, documentID int64, chunks []document.Chunk, ids []string) error {
	recs, err := newChunkRecords(documentID, chunks, ids)
	if err != nil || len(recs) == 0 {
		return err
	}
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&recs).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %d chunks of document %d: %w", len(recs), documentID, err)
	}
	return nil
}

func (s *BunStore) ListChunks(ctx context.Context, documentID int64, skip, limit int) ([]DocumentChunk, error) {
	var chunks []DocumentChunk
	err := s.db.NewSelect().
		Model(&chunks).
		Where("dc.document_id = ?", documentID).
		Order("dc.chunk_index ASC").
		Offset(max(skip, 0)).
		Limit(normalizeLimit(limit)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks of document %d: %w", documentID, err)
	}
	return chunks, nil
}

// SearchChunks returns chunks containing query, case-insensitively, in
// chunk order. The query is matched literally; LIKE wildcards in it are
// escaped. There is no relevance ranking.
func (s *BunStore) SearchChunks(ctx context.Context, documentID int64, query string, limit int) ([]DocumentChunk, error) {
	var chunks []DocumentChunk
	err := s.db.NewSelect().
		Model(&chunks).
		Where("dc.document_id = ?", documentID).
		Where("? LIKE ? ESCAPE ?", bun.Safe(s.lower+"(dc.content)"), containsPattern(query), `\`).
		Order("dc.chunk_index ASC").
		Limit(normalizeLimit(limit)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search chunks of document %d: %w", documentID, err)
	}
	return chunks, nil
}

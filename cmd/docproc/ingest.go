package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/dgallion1/writingstuff/internal/config"
	"github.com/dgallion1/writingstuff/internal/filestore"
	"github.com/dgallion1/writingstuff/internal/ingest"
	"github.com/dgallion1/writingstuff/internal/store"
	"github.com/spf13/cobra"
)

type ingestOptions struct {
	userID    string
	chunkSize int
	overlap   int
}

func newIngestCmd() *cobra.Command {
	opts := ingestOptions{}
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Store local files and their chunks in the configured database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			ctx := cmd.Context()

			db, err := store.Open(ctx, cfg.DatabaseURL, cfg.DatabaseDebug)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				return err
			}

			svc := ingest.NewService(db, filestore.Local{Root: cfg.UploadDir}, ingest.NewStats(cfg.StatsWindow), log, cfg.MaxConcurrentIngest)
			chunking := chunker.Config{ChunkSize: opts.chunkSize, Overlap: opts.overlap}

			var uploads []ingest.Upload
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				uploads = append(uploads, ingest.Upload{
					UserID:   opts.userID,
					Filename: filepath.Base(path),
					Data:     data,
					Chunking: chunking,
				})
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, item := range svc.IngestBatch(ctx, uploads) {
				switch {
				case item.Error != "":
					failed++
					fmt.Fprintf(out, "%s: error: %s\n", item.Filename, item.Error)
				case item.Report.ExtractionError != "":
					failed++
					fmt.Fprintf(out, "%s: document %d stored without chunks: %s\n", item.Filename, item.Report.Document.ID, item.Report.ExtractionError)
				default:
					fmt.Fprintf(out, "%s: document %d, %d chunks\n", item.Filename, item.Report.Document.ID, item.Report.ChunkCount)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(uploads))
			}
			return nil
		},
	}
	addChunkFlags(cmd, &opts.chunkSize, &opts.overlap)
	cmd.Flags().StringVarP(&opts.userID, "user", "u", "local", "owner recorded for the documents")
	return cmd
}

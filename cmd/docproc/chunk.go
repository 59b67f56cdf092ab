package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/pipeline"
	"github.com/spf13/cobra"
)

type chunkOptions struct {
	fileType  string
	chunkSize int
	overlap   int
	asJSON    bool
}

func newChunkCmd() *cobra.Command {
	opts := chunkOptions{}
	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Print the chunks of a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ft := document.ParseFileType(args[0])
			if opts.fileType != "" {
				ft = document.ParseFileType(opts.fileType)
			}
			cfg := chunker.Config{ChunkSize: opts.chunkSize, Overlap: opts.overlap}

			chunks, err := pipeline.Process(data, ft, cfg)
			if err != nil {
				return err
			}
			return printChunks(cmd.OutOrStdout(), chunks, opts.asJSON)
		},
	}
	addChunkFlags(cmd, &opts.chunkSize, &opts.overlap)
	cmd.Flags().StringVarP(&opts.fileType, "type", "t", "", "declared file type (default: from the file extension)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print chunks as JSON")
	return cmd
}

func addChunkFlags(cmd *cobra.Command, size, overlap *int) {
	cmd.Flags().IntVar(size, "chunk-size", chunker.DefaultChunkSize, "maximum chunk length in characters")
	cmd.Flags().IntVar(overlap, "overlap", chunker.DefaultOverlap, "characters repeated between consecutive chunks")
}

func printChunks(w io.Writer, chunks []document.Chunk, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}
	for _, c := range chunks {
		fmt.Fprintf(w, "--- chunk %d (page %d, %d chars)\n", c.Index, c.PageNumber, len([]rune(c.Text)))
		fmt.Fprintln(w, strings.TrimRight(c.Text, "\n"))
	}
	return nil
}

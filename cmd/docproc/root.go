package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "docproc",
		Short:        "Extract and chunk documents",
		SilenceUsage: true,
	}
	root.AddCommand(newChunkCmd(), newIngestCmd())
	return root
}

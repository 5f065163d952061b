package main

import (
	"fmt"
	"io"
	"os"

	"github.com/futig/oportune/internal/pkg/formatter"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract structured rows from a generated answer",
		Long: `Read a free-text answer from a file (or stdin when the file is "-" or
omitted) and print the extracted rows as JSON.

The strategy is chosen with EXTRACTOR_STRATEGY (regex or llm).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := readInput(cmd, args)
	if err != nil {
		return fmt.Errorf("read answer: %w", err)
	}

	pipeline, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	records, strategy, err := pipeline.Sessions.Extract(ctx, string(raw))
	if err != nil {
		return err
	}

	data, err := formatter.NewJSONFormatter().Format(records)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d registro(s) extraído(s) (%s)\n", len(records), strategy)
	_, err = cmd.OutOrStdout().Write(append(data, '\n'))
	return err
}
